package linalg

// Transform is a rigid (possibly improper) map v -> Rotation*v + Translation.
// Rotation is orthogonal with determinant +-1; det -1 represents a
// reflection, which is how XtalComp stays enantiomorph-aware. Per
// spec.md §4.2/§4.5 the convention is "translate first, then rotate" when
// composing two transforms, i.e. the rotating factor is the left-hand one.
type Transform struct {
	Rotation    Matrix3
	Translation Vector3
}

// IdentityTransform returns the transform that changes nothing.
func IdentityTransform() Transform {
	return Transform{Rotation: Identity()}
}

// Apply maps v through the transform: Rotation*v + Translation.
func (t Transform) Apply(v Vector3) Vector3 {
	return t.Rotation.MulVec(v).Add(t.Translation)
}

// Compose returns the transform equivalent to applying t first, then u:
// u.Apply(t.Apply(v)). Rotations multiply (u.Rotation * t.Rotation) and
// translations combine with the rotating left-hand factor:
// u.Rotation*t.Translation + u.Translation.
func (t Transform) Compose(u Transform) Transform {
	return Transform{
		Rotation:    u.Rotation.Mul(t.Rotation),
		Translation: u.Rotation.MulVec(t.Translation).Add(u.Translation),
	}
}

// Homogeneous returns the 4x4 homogeneous representation of the transform,
// row-major, for callers (spec.md §4.5) that want to emit it as a single
// matrix.
func (t Transform) Homogeneous() [4][4]float64 {
	var h [4][4]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h[i][j] = t.Rotation.At(i, j)
		}
	}
	h[0][3] = t.Translation.X
	h[1][3] = t.Translation.Y
	h[2][3] = t.Translation.Z
	h[3][3] = 1
	return h
}
