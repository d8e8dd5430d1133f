package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

func testResults(t *testing.T) ([]domain.CheckResult, []byte) {
	t.Helper()

	r1, err := domain.NewCheckResult("brightness", true, 0.9, "Brightness is within the acceptable range", nil)
	require.NoError(t, err)
	r2, err := domain.NewCheckResult("sharpness", false, 0.3, "The image is blurry. Hold the camera steady", nil)
	require.NoError(t, err)

	results := []domain.CheckResult{r1, r2}
	raw, err := json.Marshal(results)
	require.NoError(t, err)
	return results, raw
}

func TestPhotoRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	results, _ := testResults(t)
	photo := &domain.Photo{
		Timestamp: time.Now(),
		Status:    domain.StatusRejected,
		Results:   results,
		FilePath:  "data/photos/abc.jpg",
		Metadata:  map[string]interface{}{"source": "upload"},
	}

	createdAt := time.Now()
	mock.ExpectQuery("INSERT INTO photos").
		WithArgs(
			pgxmock.AnyArg(), // id, generated
			domain.StatusRejected,
			pgxmock.AnyArg(), // results json
			pgxmock.AnyArg(), // metadata
			photo.FilePath,
			pgxmock.AnyArg(), // captured_at
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	err = repo.Create(context.Background(), photo)
	require.NoError(t, err)

	assert.NotEmpty(t, photo.ID, "Create assigns an ID when none is set")
	_, err = uuid.Parse(photo.ID)
	assert.NoError(t, err)
	assert.Equal(t, createdAt, photo.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoRepository_CreateKeepsExistingID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	id := uuid.New()
	photo := &domain.Photo{
		ID:        id.String(),
		Timestamp: time.Now(),
		Status:    domain.StatusPending,
	}

	mock.ExpectQuery("INSERT INTO photos").
		WithArgs(id, domain.StatusPending, pgxmock.AnyArg(), pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	require.NoError(t, repo.Create(context.Background(), photo))
	assert.Equal(t, id.String(), photo.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoRepository_CreateInvalidID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	photo := &domain.Photo{ID: "not-a-uuid", Status: domain.StatusPending}
	err = repo.Create(context.Background(), photo)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestPhotoRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	id := uuid.New()
	capturedAt := time.Now().Add(-time.Minute)
	createdAt := time.Now()
	results, raw := testResults(t)

	rows := pgxmock.NewRows([]string{"id", "status", "results", "metadata", "file_path", "captured_at", "created_at"}).
		AddRow(id, domain.StatusRejected, raw, map[string]interface{}{"source": "upload"}, "data/photos/abc.jpg", capturedAt, createdAt)

	mock.ExpectQuery("SELECT (.+) FROM photos").
		WithArgs(id).
		WillReturnRows(rows)

	photo, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id.String(), photo.ID)
	assert.Equal(t, domain.StatusRejected, photo.Status)
	assert.Equal(t, results, photo.Results)
	assert.Equal(t, "upload", photo.Metadata["source"])
	assert.Equal(t, "data/photos/abc.jpg", photo.FilePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM photos").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	_, raw := testResults(t)
	rows := pgxmock.NewRows([]string{"id", "status", "results", "metadata", "file_path", "captured_at", "created_at"}).
		AddRow(uuid.New(), domain.StatusApproved, []byte(`[]`), map[string]interface{}{}, "a.jpg", time.Now(), time.Now()).
		AddRow(uuid.New(), domain.StatusRejected, raw, map[string]interface{}{}, "b.jpg", time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM photos").
		WithArgs(10, 0).
		WillReturnRows(rows)

	photos, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)

	require.Len(t, photos, 2)
	assert.Equal(t, domain.StatusApproved, photos[0].Status)
	assert.Len(t, photos[1].Results, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoRepository_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM photos").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoRepository_DeleteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPhotoRepository(mock)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM photos").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
