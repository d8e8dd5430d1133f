package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

type PhotoRepository struct {
	pool PgxPool
}

func NewPhotoRepository(pool PgxPool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

func (r *PhotoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	query := `
		INSERT INTO photos (id, status, results, metadata, file_path, captured_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	id, err := uuid.Parse(photo.ID)
	if err != nil {
		return domain.ErrBadRequest.WithError(fmt.Errorf("parse photo id: %w", err))
	}

	results, err := json.Marshal(photo.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		id,
		photo.Status,
		results,
		photo.Metadata,
		photo.FilePath,
		photo.Timestamp,
	).Scan(&photo.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBadRequest.WithError(fmt.Errorf("photo %s already exists", photo.ID))
		}
		return fmt.Errorf("create photo: %w", err)
	}

	return nil
}

func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	query := `
		SELECT id, status, results, metadata, file_path, captured_at, created_at
		FROM photos
		WHERE id = $1
	`

	photo, err := scanPhoto(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo by id: %w", err)
	}

	return photo, nil
}

func (r *PhotoRepository) List(ctx context.Context, limit, offset int) ([]*domain.Photo, error) {
	query := `
		SELECT id, status, results, metadata, file_path, captured_at, created_at
		FROM photos
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []*domain.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	return photos, nil
}

func (r *PhotoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM photos`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return count, nil
}

func (r *PhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrPhotoNotFound
	}

	return nil
}

// scanPhoto reads one photos row. The results column is stored as a JSONB
// array and decoded back into the typed slice, so Status stays consistent
// with what was persisted.
func scanPhoto(row pgx.Row) (*domain.Photo, error) {
	var (
		photo   domain.Photo
		id      uuid.UUID
		results []byte
	)

	err := row.Scan(
		&id,
		&photo.Status,
		&results,
		&photo.Metadata,
		&photo.FilePath,
		&photo.Timestamp,
		&photo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	photo.ID = id.String()
	if len(results) > 0 {
		if err := json.Unmarshal(results, &photo.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}

	return &photo, nil
}
