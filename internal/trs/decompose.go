package trs

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"devstabilize/internal/mathutil"
)

// ErrDegenerate is returned when a basis axis has zero length and no rotation can be derived.
var ErrDegenerate = errors.New("degenerate transform")

// Decompose splits an affine matrix into translation, Euler XYZ rotation (degrees)
// and per-axis scale. The 3×3 block does not have to be orthonormal.
func Decompose(m mathutil.Mat4) (TRS, error) {
	rot, scale, err := Normalize(m)
	if err != nil {
		return TRS{}, err
	}
	return TRS{
		Translation: mathutil.Translation(m),
		Rotation:    mathutil.EulerFromRotation(rot),
		Scale:       scale,
	}, nil
}

// Normalize divides each basis axis of m by its length. It returns the resulting pure
// rotation (zero translation) and the axis lengths. A mirrored basis (negative
// determinant) is folded onto X: the X axis and scale are negated so the rotation stays proper.
func Normalize(m mathutil.Mat4) (mathutil.Mat4, mathutil.Vec3, error) {
	axes := [3]mathutil.Vec3{}
	axes[0], axes[1], axes[2] = mathutil.Axes(m)

	var scale mathutil.Vec3
	for i, a := range axes {
		n, ok := mathutil.NormalizeAxis(a)
		if !ok {
			return mathutil.Mat4{}, mathutil.Vec3{}, errors.Wrapf(ErrDegenerate, "axis %c has length %g", "XYZ"[i], a.Len())
		}
		scale[i] = a.Len()
		axes[i] = n
	}
	if axes[0].Dot(axes[1].Cross(axes[2])) < 0 {
		axes[0] = axes[0].Mul(-1)
		scale[0] = -scale[0]
	}
	return mathutil.FromAxes(axes[0], axes[1], axes[2], mathutil.Vec3{}), scale, nil
}

// Compose builds the matrix applying scale first, then rotation, then translation.
func Compose(t TRS) mathutil.Mat4 {
	tm := mgl64.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2])
	sm := mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return tm.Mul4(mathutil.EulerXYZ(t.Rotation)).Mul4(sm)
}

// ScaleMatrix returns the pure scale matrix for per-axis factors.
func ScaleMatrix(s mathutil.Vec3) mathutil.Mat4 {
	return mgl64.Scale3D(s[0], s[1], s[2])
}
