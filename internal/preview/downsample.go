package preview

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample shrinks a premultiplied supersampled canvas to w×h with CatmullRom filtering
// and returns it unpremultiplied, so transparent edges do not darken.
func Downsample(img *image.RGBA, w, h int) *image.NRGBA {
	src := img
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		src = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(src, src.Bounds(), img, b, draw.Src, nil)
	}

	// Unpremultiply alpha
	result := image.NewNRGBA(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := src.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(src.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(src.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(src.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(src.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = src.Pix[si+3]
		}
	}
	return result
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
