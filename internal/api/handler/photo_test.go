package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/api/middleware"
	"github.com/veldkamp-software/passfoto/internal/check"
	"github.com/veldkamp-software/passfoto/internal/domain"
)

type stubService struct {
	passed bool
	err    error
}

func (s *stubService) Validate(ctx context.Context, photo *domain.Photo) error {
	if s.err != nil {
		return s.err
	}
	result, _ := domain.NewCheckResult("brightness", s.passed, 0.9, "stub", nil)
	photo.AddResult(result)
	return nil
}

func (s *stubService) Checks() []check.Check {
	checks, _ := check.Defaults(check.DefaultConfig())
	return checks
}

type stubRepo struct {
	photos  map[string]*domain.Photo
	created []*domain.Photo
	count   int64
	err     error
}

func newStubRepo() *stubRepo {
	return &stubRepo{photos: map[string]*domain.Photo{}}
}

func (r *stubRepo) Create(ctx context.Context, photo *domain.Photo) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, photo)
	r.photos[photo.ID] = photo
	return nil
}

func (r *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	photo, ok := r.photos[id.String()]
	if !ok {
		return nil, domain.ErrPhotoNotFound
	}
	return photo, nil
}

func (r *stubRepo) List(ctx context.Context, limit, offset int) ([]*domain.Photo, error) {
	var out []*domain.Photo
	for _, p := range r.photos {
		out = append(out, p)
	}
	return out, nil
}

func (r *stubRepo) Count(ctx context.Context) (int64, error) { return r.count, nil }

func (r *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.photos[id.String()]; !ok {
		return domain.ErrPhotoNotFound
	}
	delete(r.photos, id.String())
	return nil
}

type stubStore struct {
	saved   int
	removed []string
}

func (s *stubStore) Save(photo *domain.Photo) error {
	s.saved++
	photo.FilePath = "data/photos/" + photo.ID + ".jpg"
	return nil
}

func (s *stubStore) Remove(path string) error {
	s.removed = append(s.removed, path)
	return nil
}

type stubBinder struct {
	bound   []string
	unbound []string
}

func (b *stubBinder) Bind(photoID string, sessionID uuid.UUID) { b.bound = append(b.bound, photoID) }
func (b *stubBinder) Unbind(photoID string)                    { b.unbound = append(b.unbound, photoID) }

func testApp(t *testing.T, h *PhotoHandler) *fiber.App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	app.Post("/v1/photos/validate", h.Validate)
	app.Get("/v1/photos", h.List)
	app.Get("/v1/photos/:id", h.Get)
	app.Delete("/v1/photos/:id", h.Delete)
	app.Get("/v1/checks", h.Checks)
	return app
}

func testHandler(t *testing.T) (*PhotoHandler, *stubRepo, *stubStore, *stubBinder) {
	t.Helper()
	repo := newStubRepo()
	store := &stubStore{}
	binder := &stubBinder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewPhotoHandler(&stubService{passed: true}, repo, store, binder, logger)
	return h, repo, store, binder
}

// jpegBytes encodes a small solid test image.
func jpegBytes(t *testing.T) []byte {
	t.Helper()

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(120, 130, 140, 0), 60, 60, gocv.MatTypeCV8UC3)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	require.NoError(t, err)
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out
}

func multipartImage(t *testing.T, imageBytes []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(imageBytes)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestPhotoHandler_Validate(t *testing.T) {
	h, repo, store, binder := testHandler(t)
	app := testApp(t, h)

	sessionID := uuid.New().String()
	body, contentType := multipartImage(t, jpegBytes(t), map[string]string{"session_id": sessionID})

	req := httptest.NewRequest("POST", "/v1/photos/validate", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result ValidateResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &result))

	assert.NotEmpty(t, result.PhotoID)
	assert.Equal(t, domain.StatusApproved, result.Status)
	assert.True(t, result.Passed)
	require.Len(t, result.Results, 1)

	assert.Equal(t, 1, store.saved)
	require.Len(t, repo.created, 1)
	assert.Equal(t, result.PhotoID, repo.created[0].ID)

	// The websocket session was bound for the duration of the run.
	assert.Equal(t, []string{result.PhotoID}, binder.bound)
	assert.Equal(t, []string{result.PhotoID}, binder.unbound)
}

func TestPhotoHandler_ValidateMissingImage(t *testing.T) {
	h, _, _, _ := testHandler(t)
	app := testApp(t, h)

	req := httptest.NewRequest("POST", "/v1/photos/validate", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, domain.ErrValidationFailed.StatusCode, resp.StatusCode)
}

func TestPhotoHandler_ValidateRejectsBrokenImage(t *testing.T) {
	h, repo, store, _ := testHandler(t)
	app := testApp(t, h)

	body, contentType := multipartImage(t, []byte("not a jpeg"), nil)
	req := httptest.NewRequest("POST", "/v1/photos/validate", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, domain.ErrInvalidImage.StatusCode, resp.StatusCode)
	assert.Zero(t, store.saved)
	assert.Empty(t, repo.created)
}

func TestPhotoHandler_ValidateRepoFailureCleansUpFile(t *testing.T) {
	h, repo, store, _ := testHandler(t)
	repo.err = domain.ErrInternal
	app := testApp(t, h)

	body, contentType := multipartImage(t, jpegBytes(t), nil)
	req := httptest.NewRequest("POST", "/v1/photos/validate", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, 500, resp.StatusCode)
	assert.Len(t, store.removed, 1, "orphaned image is cleaned up")
}

func TestPhotoHandler_Get(t *testing.T) {
	h, repo, _, _ := testHandler(t)
	app := testApp(t, h)

	id := uuid.New()
	repo.photos[id.String()] = &domain.Photo{ID: id.String(), Status: domain.StatusApproved}

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/photos/"+id.String(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var photo domain.Photo
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &photo))
	assert.Equal(t, id.String(), photo.ID)
}

func TestPhotoHandler_GetNotFound(t *testing.T) {
	h, _, _, _ := testHandler(t)
	app := testApp(t, h)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/photos/"+uuid.New().String(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, domain.ErrPhotoNotFound.StatusCode, resp.StatusCode)
}

func TestPhotoHandler_GetInvalidID(t *testing.T) {
	h, _, _, _ := testHandler(t)
	app := testApp(t, h)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/photos/not-a-uuid", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, domain.ErrValidationFailed.StatusCode, resp.StatusCode)
}

func TestPhotoHandler_List(t *testing.T) {
	h, repo, _, _ := testHandler(t)
	repo.count = 1
	id := uuid.New()
	repo.photos[id.String()] = &domain.Photo{ID: id.String(), Status: domain.StatusRejected}
	app := testApp(t, h)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/photos?limit=5", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result ListResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &result))

	assert.Len(t, result.Data, 1)
	assert.Equal(t, int64(1), result.Pagination.Total)
	assert.Equal(t, 5, result.Pagination.Limit)
}

func TestPhotoHandler_Delete(t *testing.T) {
	h, repo, store, _ := testHandler(t)
	app := testApp(t, h)

	id := uuid.New()
	repo.photos[id.String()] = &domain.Photo{ID: id.String(), FilePath: "data/photos/x.jpg"}

	resp, err := app.Test(httptest.NewRequest("DELETE", "/v1/photos/"+id.String(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"data/photos/x.jpg"}, store.removed)
}

func TestPhotoHandler_Checks(t *testing.T) {
	h, _, _, _ := testHandler(t)
	app := testApp(t, h)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/checks", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var infos []CheckInfo
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &infos))

	require.Len(t, infos, 9)
	assert.Equal(t, "brightness", infos[0].Name)
	assert.Equal(t, "background", infos[8].Name)
}
