package preview

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"devstabilize/internal/mathutil"
)

// View selects the orthographic plane a trajectory is drawn on.
type View int

const (
	// Top looks down -Y: X to the right, -Z up the image.
	Top View = iota
	// Front looks down -Z: X to the right, Y up.
	Front
	// Side looks down +X: Z to the right, Y up.
	Side
)

var viewNames = []string{"top", "front", "side"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return "unknown"
}

// ParseView accepts "top", "front" and "side".
func ParseView(s string) (View, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range viewNames {
		if n == s {
			return View(i), nil
		}
	}
	return Top, errors.Errorf("preview: unknown view %q", s)
}

// plane maps a world point to (horizontal, vertical) plane coordinates, vertical up.
func (v View) plane(p mathutil.Vec3) (float64, float64) {
	switch v {
	case Front:
		return p[0], p[1]
	case Side:
		return p[2], p[1]
	default:
		return p[0], -p[2]
	}
}

// projector fits a set of points into a square image of a given size.
type projector struct {
	view   View
	center [2]float64
	scale  float64
	half   float64
}

// fitProjector frames points so their extent fills fill of the image.
func fitProjector(view View, points []mathutil.Vec3, size int, fill float64) projector {
	minH, minV := math.Inf(1), math.Inf(1)
	maxH, maxV := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		h, v := view.plane(p)
		minH, maxH = math.Min(minH, h), math.Max(maxH, h)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
	}
	if len(points) == 0 {
		minH, maxH, minV, maxV = -1, 1, -1, 1
	}

	extent := math.Max(maxH-minH, maxV-minV)
	if extent < 1e-6 {
		extent = 2
	}
	return projector{
		view:   view,
		center: [2]float64{(minH + maxH) / 2, (minV + maxV) / 2},
		scale:  float64(size) * fill / extent,
		half:   float64(size) / 2,
	}
}

// project returns image coordinates for a world point.
func (pr projector) project(p mathutil.Vec3) (float64, float64) {
	h, v := pr.view.plane(p)
	return (h-pr.center[0])*pr.scale + pr.half, -(v-pr.center[1])*pr.scale + pr.half
}

// resized returns the same framing on an image k times larger.
func (pr projector) resized(k float64) projector {
	pr.scale *= k
	pr.half *= k
	return pr
}
