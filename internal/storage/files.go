// Package storage handles uploaded media files on local disk.
package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// AvatarSize is the square edge avatars are scaled down to.
const AvatarSize = 400

// MediaStore writes and removes files under a single media root. Stored
// paths are always relative to the root so they can be served under /media/.
type MediaStore struct {
	root string
}

// NewMediaStore creates the media root if needed and returns a store.
func NewMediaStore(root string) (*MediaStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &MediaStore{root: root}, nil
}

// Root returns the absolute media root directory.
func (s *MediaStore) Root() string {
	return s.root
}

// Save writes data under <root>/<kind>/<year>/<month>/ with a random name
// and returns the root-relative path.
func (s *MediaStore) Save(kind, ext string, data []byte) (string, error) {
	now := time.Now()
	rel := filepath.Join(kind, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", now.Month()), uuid.NewString()+ext)
	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Delete removes a previously saved file. Missing files are not an error;
// cleanup is best-effort.
func (s *MediaStore) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	rel = filepath.Clean(rel)
	if strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("refusing to delete outside media root: %s", rel)
	}
	err := os.Remove(filepath.Join(s.root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// NormalizeAvatar decodes an uploaded image, scales it to fit AvatarSize and
// re-encodes as webp. Re-encoding strips metadata and bounds storage cost.
func NormalizeAvatar(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > AvatarSize || h > AvatarSize {
		scale := float64(AvatarSize) / float64(w)
		if h > w {
			scale = float64(AvatarSize) / float64(h)
		}
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
