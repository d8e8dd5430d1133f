// Package storage persists photo image buffers on disk. The database keeps
// the validation record; the JPEG itself lives here, addressed by photo ID.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

type FileStore struct {
	dir string
}

// NewFileStore creates the storage directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the photo's image as a JPEG named after its ID and records the
// resulting path on the photo. The photo must already carry an ID.
func (s *FileStore) Save(photo *domain.Photo) error {
	if photo.Image.Empty() {
		return domain.ErrInvalidImage
	}
	if photo.ID == "" {
		return domain.ErrBadRequest.WithError(fmt.Errorf("photo has no id"))
	}

	path := filepath.Join(s.dir, photo.ID+".jpg")
	if ok := gocv.IMWrite(path, photo.Image); !ok {
		return fmt.Errorf("write image %s", path)
	}

	photo.FilePath = path
	return nil
}

// Load reads a stored image back into a Mat. The caller owns the returned
// Mat and must Close it.
func (s *FileStore) Load(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), domain.ErrPhotoNotFound.WithError(fmt.Errorf("read image %s", path))
	}
	return img, nil
}

// Remove deletes a stored image. Removing a path that no longer exists is
// not an error.
func (s *FileStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image %s: %w", path, err)
	}
	return nil
}
