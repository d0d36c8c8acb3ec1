package preview

import (
	"bufio"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
)

// LoadPlate decodes a background plate (TGA, PNG or JPEG).
func LoadPlate(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "preview: open plate %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "preview: decode plate %s", path)
	}
	return img, nil
}
