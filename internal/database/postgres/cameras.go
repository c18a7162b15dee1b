package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-engine/internal/database"
)

// CameraRepository provides PostgreSQL-backed camera storage.
type CameraRepository struct {
	pool *Pool
}

// NewCameraRepository creates a new PostgreSQL camera repository.
func NewCameraRepository(pool *Pool) *CameraRepository {
	return &CameraRepository{pool: pool}
}

const cameraColumns = `id, name, ip_address, location, created_at, updated_at`

// List returns all cameras ordered by id.
func (r *CameraRepository) List(ctx context.Context) ([]database.Camera, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cameraColumns+` FROM cameras ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cameras: %w", err)
	}
	defer rows.Close()

	var cameras []database.Camera
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cameras = append(cameras, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cameras: %w", err)
	}
	return cameras, nil
}

// Get returns a single camera.
func (r *CameraRepository) Get(ctx context.Context, id int64) (*database.Camera, error) {
	c, err := scanCamera(r.pool.QueryRow(ctx, `SELECT `+cameraColumns+` FROM cameras WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get camera %d: %w", id, err)
	}
	return c, nil
}

// Create inserts a camera and fills its id and timestamps.
func (r *CameraRepository) Create(ctx context.Context, c *database.Camera) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cameras (name, ip_address, location)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, c.Name, c.IPAddress, c.Location).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert camera: %w", err)
	}
	return nil
}

// Update applies the set fields of a partial update.
func (r *CameraRepository) Update(ctx context.Context, id int64, u database.CameraUpdate) (*database.Camera, error) {
	c, err := scanCamera(r.pool.QueryRow(ctx, `
		UPDATE cameras SET
			name = COALESCE($2, name),
			ip_address = COALESCE($3, ip_address),
			location = COALESCE($4, location),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+cameraColumns,
		id, nullString(u.Name), nullString(u.IPAddress), nullString(u.Location),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update camera %d: %w", id, err)
	}
	return c, nil
}

// Delete removes a camera.
func (r *CameraRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cameras WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete camera %d: %w", id, err)
	}
	return checkAffected(result)
}

func scanCamera(row rowScanner) (*database.Camera, error) {
	var c database.Camera
	if err := row.Scan(&c.ID, &c.Name, &c.IPAddress, &c.Location, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
