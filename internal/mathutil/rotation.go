package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return mgl64.DegToRad(d)
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return mgl64.RadToDeg(r)
}

// EulerXYZ returns the rotation matrix for Euler angles in degrees, X applied first,
// then Y, then Z: Rz × Ry × Rx.
func EulerXYZ(deg Vec3) Mat4 {
	rx := mgl64.HomogRotate3DX(Deg2Rad(deg[0]))
	ry := mgl64.HomogRotate3DY(Deg2Rad(deg[1]))
	rz := mgl64.HomogRotate3DZ(Deg2Rad(deg[2]))
	return rz.Mul4(ry).Mul4(rx)
}

// EulerFromRotation extracts XYZ Euler angles in degrees from an orthonormal rotation.
// At ±90° pitch the Z angle is pinned to zero and X absorbs the remaining roll.
func EulerFromRotation(r Mat4) Vec3 {
	r00, r10, r20 := r.At(0, 0), r.At(1, 0), r.At(2, 0)
	r21, r22 := r.At(2, 1), r.At(2, 2)

	cy := math.Hypot(r00, r10)
	y := math.Atan2(-r20, cy)

	var x, z float64
	if cy > gimbalEpsilon {
		x = math.Atan2(r21, r22)
		z = math.Atan2(r10, r00)
	} else if r20 < 0 {
		// pitch +90: R01 = sin(x-z), R11 = cos(x-z)
		x = math.Atan2(r.At(0, 1), r.At(1, 1))
	} else {
		// pitch -90: R01 = -sin(x+z), R11 = cos(x+z)
		x = math.Atan2(-r.At(0, 1), r.At(1, 1))
	}

	return Vec3{cleanZero(Rad2Deg(x)), cleanZero(Rad2Deg(y)), cleanZero(Rad2Deg(z))}
}

// cleanZero folds -0 into +0 so printed and keyed angles stay stable.
func cleanZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
