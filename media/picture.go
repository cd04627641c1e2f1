// Package media stores uploaded profile pictures under randomized names.
package media

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ThumbnailBound is the maximum width and height of a stored picture.
const ThumbnailBound = 125

// ErrUnsupportedType rejects uploads that are not jpg, jpeg or png.
var ErrUnsupportedType = errors.New("unsupported picture type")

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// PictureStore writes thumbnails into a fixed directory. Superseded
// files are left in place.
type PictureStore struct {
	dir string
}

func NewPictureStore(dir string) *PictureStore {
	return &PictureStore{dir: dir}
}

// Save downsizes the uploaded image so neither dimension exceeds
// ThumbnailBound (never upscaling), writes it under a random 16-hex
// filename preserving the original extension, and returns that filename.
// A nil upload is a no-op returning fallback unchanged.
func (s *PictureStore) Save(upload *multipart.FileHeader, fallback string) (string, error) {
	if upload == nil {
		return fallback, nil
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}

	token := make([]byte, 8)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("generating picture name: %w", err)
	}
	filename := hex.EncodeToString(token) + ext

	src, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return "", fmt.Errorf("decoding picture: %w", err)
	}
	thumb := imaging.Fit(img, ThumbnailBound, ThumbnailBound, imaging.Lanczos)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating pictures directory: %w", err)
	}
	path := filepath.Join(s.dir, filename)
	if err := imaging.Save(thumb, path); err != nil {
		return "", fmt.Errorf("saving picture: %w", err)
	}
	return filename, nil
}
