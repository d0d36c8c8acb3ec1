package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is mgl64's 3-component vector (value type, stack-allocated).
type Vec3 = mgl64.Vec3

// One is the neutral scale.
var One = Vec3{1, 1, 1}

// NormalizeAxis divides v by its length. It reports false instead of producing
// NaN or Inf when the axis has collapsed.
func NormalizeAxis(v Vec3) (Vec3, bool) {
	l := v.Len()
	if l < AxisEpsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// IsFinite reports whether every component is a finite number.
func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
