package preview

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
)

// Format is an output image format.
type Format string

const (
	WebP Format = "webp"
	TGA  Format = "tga"
)

// ParseFormat accepts "webp" and "tga".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case WebP, TGA:
		return f, nil
	}
	return "", errors.Errorf("preview: unknown format %q", s)
}

// Ext returns the file extension for f, with the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case WebP:
		return errors.Wrap(nativewebp.Encode(w, img, nil), "preview: webp encode")
	case TGA:
		return errors.Wrap(tga.Encode(w, img), "preview: tga encode")
	}
	return errors.Errorf("preview: unknown format %q", f)
}

// Save writes img to path, creating parent directories.
func Save(path string, img image.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "preview: create output dir")
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "preview: create")
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
