package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/check"
	"github.com/veldkamp-software/passfoto/internal/domain"
	"github.com/veldkamp-software/passfoto/internal/pipeline"
	"github.com/veldkamp-software/passfoto/internal/repository"
)

const (
	maxImageSize     = 10 * 1024 * 1024 // 10MB
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidationService runs a photo through the check pipeline.
type ValidationService interface {
	Validate(ctx context.Context, photo *domain.Photo) error
	Checks() []check.Check
}

// PhotoStore persists the image buffer itself.
type PhotoStore interface {
	Save(photo *domain.Photo) error
	Remove(path string) error
}

// SessionBinder routes live pipeline events to the websocket session an
// upload belongs to.
type SessionBinder interface {
	Bind(photoID string, sessionID uuid.UUID)
	Unbind(photoID string)
}

// PhotoHandler handles photo validation requests
type PhotoHandler struct {
	service ValidationService
	repo    repository.PhotoRepositoryInterface
	store   PhotoStore
	binder  SessionBinder
	logger  *slog.Logger
}

func NewPhotoHandler(service ValidationService, repo repository.PhotoRepositoryInterface, store PhotoStore, binder SessionBinder, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		service: service,
		repo:    repo,
		store:   store,
		binder:  binder,
		logger:  logger,
	}
}

// ValidateResponse is the verdict for one uploaded photo.
type ValidateResponse struct {
	pipeline.Summary
	Results []domain.CheckResult `json:"results"`
}

// ListResponse wraps a photo page with pagination info.
type ListResponse struct {
	Data       []*domain.Photo `json:"data"`
	Pagination PaginationMeta  `json:"pagination"`
}

type PaginationMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// CheckInfo describes one configured compliance check.
type CheckInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Threshold   float64 `json:"threshold"`
}

// Validate POST /v1/photos/validate - run the full check set on an upload
func (h *PhotoHandler) Validate(c *fiber.Ctx) error {
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	img, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil || img.Empty() {
		return domain.ErrInvalidImage.WithError(err)
	}
	defer img.Close()

	photo := domain.NewPhoto(img)
	photo.ID = uuid.New().String()
	photo.Metadata["source"] = "upload"

	// Bind the upload to its websocket session so the client sees live
	// progress while the checks run.
	if sessionID, err := uuid.Parse(c.FormValue("session_id")); err == nil {
		h.binder.Bind(photo.ID, sessionID)
		defer h.binder.Unbind(photo.ID)
	}

	if err := h.service.Validate(c.Context(), photo); err != nil {
		return err
	}

	if err := h.store.Save(photo); err != nil {
		return err
	}

	if err := h.repo.Create(c.Context(), photo); err != nil {
		// The record is the source of truth; don't leave an orphaned file.
		if removeErr := h.store.Remove(photo.FilePath); removeErr != nil {
			h.logger.Warn("failed to remove orphaned image", "path", photo.FilePath, "error", removeErr)
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(ValidateResponse{
		Summary: pipeline.Summarize(photo),
		Results: photo.Results,
	})
}

// Get GET /v1/photos/:id - fetch a validation record
func (h *PhotoHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	photo, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(photo)
}

// List GET /v1/photos - page through validation records
func (h *PhotoHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	photos, err := h.repo.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}

	total, err := h.repo.Count(c.Context())
	if err != nil {
		return err
	}

	if photos == nil {
		photos = []*domain.Photo{}
	}

	return c.JSON(ListResponse{
		Data: photos,
		Pagination: PaginationMeta{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	})
}

// Delete DELETE /v1/photos/:id - remove a record and its stored image
func (h *PhotoHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	photo, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(c.Context(), id); err != nil {
		return err
	}

	// Best-effort file cleanup; the record is already gone.
	if err := h.store.Remove(photo.FilePath); err != nil {
		h.logger.Warn("failed to remove stored image", "path", photo.FilePath, "error", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Checks GET /v1/checks - list the configured check set
func (h *PhotoHandler) Checks(c *fiber.Ctx) error {
	checks := h.service.Checks()

	infos := make([]CheckInfo, 0, len(checks))
	for _, chk := range checks {
		infos = append(infos, CheckInfo{
			Name:        chk.Name(),
			Description: chk.Description(),
			Threshold:   chk.Threshold(),
		})
	}

	return c.JSON(infos)
}

// extractAndValidateImage extracts and validates the image from the form
func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	if file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
