// Package preview draws the world-space trajectories of a retarget run as a small
// orthographic image, optionally over a background plate.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"

	"devstabilize/internal/mathutil"
	"devstabilize/internal/retarget"
	"devstabilize/internal/trs"
)

// Options controls a preview render.
type Options struct {
	Size        int
	Supersample int
	View        View
	Plate       image.Image
	Title       string
}

const (
	defaultSize = 512
	fillRatio   = 0.8
	// axisTicks is the number of orientation ticks drawn along the source path.
	axisTicks = 8
)

var (
	background = color.RGBA{0x20, 0x22, 0x26, 0xff}
	sourceCol  = color.RGBA{0xf0, 0x8a, 0x24, 0xff}
	destCol    = color.RGBA{0x3a, 0xa8, 0xf0, 0xff}
	tickCol    = color.RGBA{0xe8, 0xe8, 0xe8, 0xff}
	labelCol   = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Render draws the source world path as sampled before the run and the destination's
// new translation, one point per frame.
func Render(samples []retarget.FrameSample, opts Options) (*image.NRGBA, error) {
	if len(samples) == 0 {
		return nil, errors.New("preview: no frames")
	}
	size := opts.Size
	if size <= 0 {
		size = defaultSize
	}
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}

	srcPath := make([]mathutil.Vec3, len(samples))
	dstPath := make([]mathutil.Vec3, len(samples))
	for i, s := range samples {
		srcPath[i] = mathutil.Translation(s.SourceWorld)
		dstPath[i] = s.Dest.Translation
	}
	all := append(append([]mathutil.Vec3(nil), srcPath...), dstPath...)
	pr := fitProjector(opts.View, all, size, fillRatio)
	big := pr.resized(float64(ss))

	c := NewCanvas(size*ss, size*ss)
	c.Fill(background)
	if opts.Plate != nil {
		c.Backdrop(opts.Plate)
	}

	w := float64(ss)
	drawPath(c, big, dstPath, 1.5*w, destCol)
	drawPath(c, big, srcPath, 1.5*w, sourceCol)
	drawTicks(c, big, samples, 12*w)

	x0, y0 := big.project(srcPath[0])
	c.Dot(x0, y0, 3*w, sourceCol)
	x1, y1 := big.project(srcPath[len(srcPath)-1])
	c.Dot(x1, y1, 3*w, tickCol)

	img := Downsample(c.Img, size, size)

	first, last := samples[0].Frame, samples[len(samples)-1].Frame
	lx, ly := pr.project(srcPath[0])
	Label(img, int(lx)+5, int(ly)-5, fmt.Sprint(first), labelCol)
	if last != first {
		lx, ly = pr.project(srcPath[len(srcPath)-1])
		Label(img, int(lx)+5, int(ly)-5, fmt.Sprint(last), labelCol)
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("frames %d-%d", first, last)
	}
	Label(img, 6, 16, title, labelCol)
	Label(img, 6, size-22, "source", sourceCol)
	Label(img, 6, size-8, fmt.Sprintf("dest (%s)", opts.View), destCol)
	return img, nil
}

func drawPath(c *Canvas, pr projector, path []mathutil.Vec3, width float64, col color.Color) {
	xs := make([]float64, len(path))
	ys := make([]float64, len(path))
	for i, p := range path {
		xs[i], ys[i] = pr.project(p)
	}
	if len(path) == 1 {
		c.Dot(xs[0], ys[0], width, col)
		return
	}
	c.Polyline(xs, ys, width, col)
}

// drawTicks marks the source's forward (-Z) axis at evenly spaced frames.
func drawTicks(c *Canvas, pr projector, samples []retarget.FrameSample, length float64) {
	step := len(samples) / axisTicks
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(samples); i += step {
		m := samples[i].SourceWorld
		rot, _, err := trs.Normalize(m)
		if err != nil {
			continue
		}
		_, _, z := mathutil.Axes(rot)
		p := mathutil.Translation(m)
		x0, y0 := pr.project(p)
		// project a unit offset and rescale it to a fixed on-screen length
		x1, y1 := pr.project(p.Sub(z))
		dx, dy := x1-x0, y1-y0
		l := dx*dx + dy*dy
		if l < 1e-12 {
			continue
		}
		k := length / math.Sqrt(l)
		c.Line(x0, y0, x0+dx*k, y0+dy*k, length/8, tickCol)
	}
}
