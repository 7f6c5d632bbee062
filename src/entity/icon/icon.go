package icon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrReadIcon = errors.New("failed to read icon file")
	ErrNoExt    = errors.New("icon file has no extension")
)

// Icon is the inline content blob the create-app call carries.
type Icon struct {
	MimeType string
	Data     []byte
}

// Load reads the icon file and derives its MIME type from the file
// extension: lower-cased, leading dot stripped, prefixed "image/".
func Load(path string) (Icon, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if len(ext) <= 0 {
		return Icon{}, fmt.Errorf("%s: %w", path, ErrNoExt)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Icon{}, fmt.Errorf("%s: %w", path, ErrReadIcon)
	}

	return Icon{
		MimeType: "image/" + ext,
		Data:     data,
	}, nil
}
