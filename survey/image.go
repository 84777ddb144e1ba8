package survey

import (
	"encoding/base64"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

var reDataURL = regexp.MustCompile(`^data:image/(\w+);base64,`)

var imageTypes = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"png":  true,
}

// ImageStore persists data-URL encoded survey images as files under
// <root>/images. Only the relative path ends up on the survey row.
type ImageStore struct {
	root string
}

func NewImageStore(root string) ImageStore {
	return ImageStore{root: root}
}

// Save decodes a "data:image/<type>;base64," URL and writes it to a
// randomly named file. Returns the relative path for persistence.
// A malformed URL, unsupported subtype or undecodable payload is a
// validation failure.
func (s ImageStore) Save(dataURL string) (string, error) {
	match := reDataURL.FindStringSubmatch(dataURL)
	if match == nil {
		return "", invalid("image", "not a base64 image data URL")
	}
	imageType := strings.ToLower(match[1])
	if !imageTypes[imageType] {
		return "", invalid("image", "unsupported image type "+imageType)
	}

	payload := dataURL[len(match[0]):]
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", invalid("image", "base64 decode failed")
	}

	dir := filepath.Join(s.root, "images")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "create images directory")
	}

	filename := uuid.Must(uuid.NewV4()).String() + "." + imageType
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", errors.Wrap(err, "write image")
	}

	return path.Join("images", filename), nil
}

// Delete removes a previously saved image by its relative path.
// Missing files and empty paths are not an error.
func (s ImageStore) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(relPath)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete image")
	}
	return nil
}
