package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Mat4 is mgl64's column-major 4×4 matrix. The flat element order equals a row-major
// row-vector host matrix (translation in elements 12..14), so host lists copy straight in.
type Mat4 = mgl64.Mat4

// List returns the 16 values in host list order.
func List(m Mat4) [16]float64 {
	return [16]float64(m)
}

// Translation returns the translation part of an affine matrix.
func Translation(m Mat4) Vec3 {
	return m.Col(3).Vec3()
}

// TranslationMatrix returns the pure translation matrix of m.
func TranslationMatrix(m Mat4) Mat4 {
	t := Translation(m)
	return mgl64.Translate3D(t[0], t[1], t[2])
}

// Axes returns the X, Y and Z basis axes of the upper-left 3×3 block.
func Axes(m Mat4) (x, y, z Vec3) {
	return m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
}

// FromAxes builds an affine matrix from three basis axes and a translation.
func FromAxes(x, y, z, t Vec3) Mat4 {
	return mgl64.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), t.Vec4(1))
}

// ApproxEqual compares two matrices element by element with an absolute tolerance.
func ApproxEqual(a, b Mat4, tol float64) bool {
	for i := range a {
		d := a[i] - b[i]
		if d > tol || d < -tol {
			return false
		}
	}
	return true
}

// Inverse returns the inverse of m and false when m is singular.
func Inverse(m Mat4) (Mat4, bool) {
	inv := m.Inv()
	if inv == (Mat4{}) {
		return inv, false
	}
	return inv, true
}
