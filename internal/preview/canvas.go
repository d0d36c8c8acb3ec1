package preview

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Canvas is a premultiplied RGBA target with anti-aliased stroke primitives.
type Canvas struct {
	Width  int
	Height int
	Img    *image.RGBA

	z *vector.Rasterizer
}

// NewCanvas allocates a transparent canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		Width:  w,
		Height: h,
		Img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		z:      vector.NewRasterizer(w, h),
	}
}

// Fill paints the whole canvas with c.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.Img, c.Img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// Backdrop scales img over the whole canvas.
func (c *Canvas) Backdrop(img image.Image) {
	draw.ApproxBiLinear.Scale(c.Img, c.Img.Bounds(), img, img.Bounds(), draw.Over, nil)
}

// Polyline strokes the open path through xs, ys with the given width.
func (c *Canvas) Polyline(xs, ys []float64, width float64, col color.Color) {
	c.z.Reset(c.Width, c.Height)
	n := 0
	for i := 1; i < len(xs); i++ {
		if c.segment(xs[i-1], ys[i-1], xs[i], ys[i], width/2) {
			n++
		}
	}
	if n > 0 {
		c.z.Draw(c.Img, c.Img.Bounds(), image.NewUniform(col), image.Point{})
	}
}

// Line strokes a single segment.
func (c *Canvas) Line(x0, y0, x1, y1, width float64, col color.Color) {
	c.Polyline([]float64{x0, x1}, []float64{y0, y1}, width, col)
}

// segment adds one stroke quad to the rasterizer path.
func (c *Canvas) segment(x0, y0, x1, y1, hw float64) bool {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return false
	}
	nx, ny := -dy/l*hw, dx/l*hw
	// extend by half a width so consecutive segments overlap at joints
	ex, ey := dx/l*hw, dy/l*hw
	x0, y0, x1, y1 = x0-ex, y0-ey, x1+ex, y1+ey

	c.z.MoveTo(float32(x0+nx), float32(y0+ny))
	c.z.LineTo(float32(x1+nx), float32(y1+ny))
	c.z.LineTo(float32(x1-nx), float32(y1-ny))
	c.z.LineTo(float32(x0-nx), float32(y0-ny))
	c.z.ClosePath()
	return true
}

// Dot fills a disc of radius r.
func (c *Canvas) Dot(x, y, r float64, col color.Color) {
	const sides = 24
	c.z.Reset(c.Width, c.Height)
	c.z.MoveTo(float32(x+r), float32(y))
	for i := 1; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / sides
		c.z.LineTo(float32(x+r*math.Cos(a)), float32(y+r*math.Sin(a)))
	}
	c.z.ClosePath()
	c.z.Draw(c.Img, c.Img.Bounds(), image.NewUniform(col), image.Point{})
}

// Label draws text with its baseline starting at (x, y).
func Label(dst draw.Image, x, y int, text string, col color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
