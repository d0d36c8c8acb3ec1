package mathutil

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestHostListLayout(t *testing.T) {
	// row-major, row-vector host list with translation in the last row
	l := [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		3, 4, 5, 1,
	}
	m := Mat4(l)
	assert.Equal(t, Vec3{3, 4, 5}, Translation(m))
	assert.Equal(t, l, List(m))
	assert.Equal(t, mgl64.Translate3D(3, 4, 5), TranslationMatrix(m))
}

func TestAxesRoundTrip(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3).Mul4(EulerXYZ(Vec3{10, 20, 30})).Mul4(mgl64.Scale3D(2, 3, 4))
	x, y, z := Axes(m)
	assert.InDelta(t, 2, x.Len(), 1e-12)
	assert.InDelta(t, 3, y.Len(), 1e-12)
	assert.InDelta(t, 4, z.Len(), 1e-12)
	assert.True(t, ApproxEqual(m, FromAxes(x, y, z, Translation(m)), 1e-12))
}

func TestApproxEqual(t *testing.T) {
	a := mgl64.Translate3D(1, 2, 3)
	b := a
	b[12] += 1e-7
	assert.True(t, ApproxEqual(a, b, 1e-6))
	assert.False(t, ApproxEqual(a, b, 1e-8))
	b[12] -= 2e-7
	assert.False(t, ApproxEqual(a, b, 1e-8))
}

func TestInverse(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3).Mul4(EulerXYZ(Vec3{10, 20, 30}))
	inv, ok := Inverse(m)
	assert.True(t, ok)
	assert.True(t, ApproxEqual(m.Mul4(inv), mgl64.Ident4(), 1e-8))

	_, ok = Inverse(mgl64.Scale3D(1, 0, 1))
	assert.False(t, ok)
}
