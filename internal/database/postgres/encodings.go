package postgres

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-engine/internal/database"
)

// EncodingRepository provides PostgreSQL-backed face encoding storage.
type EncodingRepository struct {
	pool *Pool
}

// NewEncodingRepository creates a new PostgreSQL encoding repository.
func NewEncodingRepository(pool *Pool) *EncodingRepository {
	return &EncodingRepository{pool: pool}
}

// Add stores one encoding for an existing user.
func (r *EncodingRepository) Add(ctx context.Context, userID int64, encoding []float64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO face_encodings (user_id, encoding) VALUES ($1, $2) RETURNING id`,
		userID, database.EncodeVector(encoding),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert face encoding: %w", err)
	}
	return id, nil
}

// All returns every stored encoding ordered by id.
func (r *EncodingRepository) All(ctx context.Context) ([]database.StoredEncoding, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, encoding, created_at FROM face_encodings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query face encodings: %w", err)
	}
	defer rows.Close()

	var encodings []database.StoredEncoding
	for rows.Next() {
		var (
			e   database.StoredEncoding
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan face encoding: %w", err)
		}
		if e.Encoding, err = database.DecodeVector(raw); err != nil {
			return nil, fmt.Errorf("decode face encoding %d: %w", e.ID, err)
		}
		encodings = append(encodings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate face encodings: %w", err)
	}
	return encodings, nil
}

// Count returns the number of stored encodings.
func (r *EncodingRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM face_encodings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count face encodings: %w", err)
	}
	return n, nil
}
