package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kozaktomas/face-engine/internal/database"
)

// RecognitionLogRepository provides PostgreSQL-backed recognition log storage.
type RecognitionLogRepository struct {
	pool *Pool
}

// NewRecognitionLogRepository creates a new PostgreSQL recognition log repository.
func NewRecognitionLogRepository(pool *Pool) *RecognitionLogRepository {
	return &RecognitionLogRepository{pool: pool}
}

// Append writes one recognition attempt.
func (r *RecognitionLogRepository) Append(ctx context.Context, l *database.RecognitionLog) error {
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	var userID sql.NullInt64
	if l.UserID != nil {
		userID = sql.NullInt64{Int64: *l.UserID, Valid: true}
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO recognition_logs (user_id, timestamp, snapshot_filename)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, userID, l.Timestamp, l.SnapshotFilename).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert recognition log: %w", err)
	}
	return nil
}

// List returns every recognition attempt, newest first.
// The LEFT JOIN keeps rows whose user was deleted.
func (r *RecognitionLogRepository) List(ctx context.Context) ([]database.RecognitionLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rl.id, rl.user_id, rl.timestamp, rl.snapshot_filename, rl.created_at,
		       COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
		FROM recognition_logs rl
		LEFT JOIN users u ON u.id = rl.user_id
		ORDER BY rl.timestamp DESC, rl.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query recognition logs: %w", err)
	}
	defer rows.Close()

	var entries []database.RecognitionLogEntry
	for rows.Next() {
		var (
			e      database.RecognitionLogEntry
			userID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &userID, &e.Timestamp, &e.SnapshotFilename, &e.CreatedAt,
			&e.FirstName, &e.LastName); err != nil {
			return nil, fmt.Errorf("scan recognition log: %w", err)
		}
		if userID.Valid {
			id := userID.Int64
			e.UserID = &id
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recognition logs: %w", err)
	}
	return entries, nil
}
