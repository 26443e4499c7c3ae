package linalg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorOps(t *testing.T) {
	v := Vector3{1, 2, 3}
	w := Vector3{4, 5, 6}
	assert.Equal(t, Vector3{5, 7, 9}, v.Add(w))
	assert.Equal(t, Vector3{-3, -3, -3}, v.Sub(w))
	assert.InDelta(t, 32.0, v.Dot(w), 1e-12)
	assert.Equal(t, Vector3{-3, 6, -3}, v.Cross(w))
}

func TestFoldedAngleIsEnantiomorphBlind(t *testing.T) {
	v := Vector3{1, 0, 0}
	w1 := Vector3{math.Cos(2), math.Sin(2), 0} // obtuse
	w2 := Vector3{math.Cos(2), -math.Sin(2), 0}
	a1 := FoldedAngle(v, w1)
	a2 := FoldedAngle(v, w2)
	assert.InDelta(t, a1, a2, 1e-9)
	assert.LessOrEqual(t, a1, math.Pi/2+1e-9)
}

func TestMatrixIdentityAndMulVec(t *testing.T) {
	id := Identity()
	v := Vector3{1, 2, 3}
	assert.Equal(t, v, id.MulVec(v))
}

func TestMatrixInverseRoundTrip(t *testing.T) {
	m := NewFromColumns(Vector3{3, 0, 0}, Vector3{2, 4, 0}, Vector3{2, 5, 3})
	inv, ok := m.Inverse()
	assert.True(t, ok)
	prod := m.Mul(inv)
	id := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, id.At(i, j), prod.At(i, j), 1e-9)
		}
	}
}

func TestDeterminantIsVolume(t *testing.T) {
	m := NewFromColumns(Vector3{3, 0, 0}, Vector3{2, 4, 0}, Vector3{2, 5, 3})
	assert.InDelta(t, 36.0, m.Det(), 1e-9)
	assert.InDelta(t, 36.0, m.Volume(), 1e-9)
}

func TestSingularMatrixInverseFails(t *testing.T) {
	m := NewFromColumns(Vector3{1, 0, 0}, Vector3{2, 0, 0}, Vector3{0, 0, 1})
	_, ok := m.Inverse()
	assert.False(t, ok)
}

func TestTransformApplyAndCompose(t *testing.T) {
	rot := Diag(1, 1, -1) // reflection through xy plane
	t1 := Transform{Rotation: rot, Translation: Vector3{1, 0, 0}}
	v := Vector3{0, 0, 2}
	got := t1.Apply(v)
	assert.Equal(t, Vector3{1, 0, -2}, got)

	id := IdentityTransform()
	composed := t1.Compose(id)
	assert.Equal(t, t1.Apply(v), composed.Apply(v))
}
