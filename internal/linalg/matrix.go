package linalg

// Matrix3 is a 3x3 real matrix. For a cell matrix, columns A, B, C are the
// lattice vectors a, b, c; for a rotation, columns are the images of the
// standard basis vectors.
type Matrix3 struct {
	// Rows, so m[i][j] is row i, column j.
	m [3][3]float64
}

// NewFromColumns builds a Matrix3 whose columns are a, b, c.
func NewFromColumns(a, b, c Vector3) Matrix3 {
	return Matrix3{m: [3][3]float64{
		{a.X, b.X, c.X},
		{a.Y, b.Y, c.Y},
		{a.Z, b.Z, c.Z},
	}}
}

// NewFromRows builds a Matrix3 whose rows are r0, r1, r2.
func NewFromRows(r0, r1, r2 Vector3) Matrix3 {
	return Matrix3{m: [3][3]float64{
		{r0.X, r0.Y, r0.Z},
		{r1.X, r1.Y, r1.Z},
		{r2.X, r2.Y, r2.Z},
	}}
}

// Identity returns the 3x3 identity matrix.
func Identity() Matrix3 {
	return NewFromColumns(
		Vector3{1, 0, 0},
		Vector3{0, 1, 0},
		Vector3{0, 0, 1},
	)
}

// Diag returns diag(i, j, k).
func Diag(i, j, k float64) Matrix3 {
	return NewFromColumns(
		Vector3{i, 0, 0},
		Vector3{0, j, 0},
		Vector3{0, 0, k},
	)
}

// At returns the entry at row i, column j.
func (m Matrix3) At(i, j int) float64 {
	return m.m[i][j]
}

// Col returns column j (0-indexed) as a vector — for a cell matrix, column
// 0/1/2 are lattice vectors a/b/c.
func (m Matrix3) Col(j int) Vector3 {
	return Vector3{m.m[0][j], m.m[1][j], m.m[2][j]}
}

// Row returns row i as a vector.
func (m Matrix3) Row(i int) Vector3 {
	return Vector3{m.m[i][0], m.m[i][1], m.m[i][2]}
}

// A, B, C return the three lattice vectors of a cell matrix by name.
func (m Matrix3) A() Vector3 { return m.Col(0) }
func (m Matrix3) B() Vector3 { return m.Col(1) }
func (m Matrix3) C() Vector3 { return m.Col(2) }

// Add returns m + n entrywise.
func (m Matrix3) Add(n Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.m[i][j] = m.m[i][j] + n.m[i][j]
		}
	}
	return out
}

// Scale returns m scaled entrywise by s.
func (m Matrix3) Scale(s float64) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.m[i][j] = m.m[i][j] * s
		}
	}
	return out
}

// MulVec returns m * v.
func (m Matrix3) MulVec(v Vector3) Vector3 {
	return Vector3{
		X: m.m[0][0]*v.X + m.m[0][1]*v.Y + m.m[0][2]*v.Z,
		Y: m.m[1][0]*v.X + m.m[1][1]*v.Y + m.m[1][2]*v.Z,
		Z: m.m[2][0]*v.X + m.m[2][1]*v.Y + m.m[2][2]*v.Z,
	}
}

// Mul returns m * n.
func (m Matrix3) Mul(n Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += m.m[i][k] * n.m[k][j]
			}
			out.m[i][j] = s
		}
	}
	return out
}

// Transpose returns the transpose of m.
func (m Matrix3) Transpose() Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.m[j][i] = m.m[i][j]
		}
	}
	return out
}

// Det returns the determinant of m. For a cell matrix this is the signed
// cell volume.
func (m Matrix3) Det() float64 {
	return m.m[0][0]*(m.m[1][1]*m.m[2][2]-m.m[1][2]*m.m[2][1]) -
		m.m[0][1]*(m.m[1][0]*m.m[2][2]-m.m[1][2]*m.m[2][0]) +
		m.m[0][2]*(m.m[1][0]*m.m[2][1]-m.m[1][1]*m.m[2][0])
}

// Volume returns |Det(m)|.
func (m Matrix3) Volume() float64 {
	d := m.Det()
	if d < 0 {
		return -d
	}
	return d
}

// Inverse returns the cofactor/determinant inverse of m, and false if m is
// singular (|det| below eps).
func (m Matrix3) Inverse() (Matrix3, bool) {
	det := m.Det()
	const eps = 1e-12
	if det < eps && det > -eps {
		return Matrix3{}, false
	}
	inv := 1.0 / det
	var c Matrix3
	c.m[0][0] = (m.m[1][1]*m.m[2][2] - m.m[1][2]*m.m[2][1]) * inv
	c.m[0][1] = (m.m[0][2]*m.m[2][1] - m.m[0][1]*m.m[2][2]) * inv
	c.m[0][2] = (m.m[0][1]*m.m[1][2] - m.m[0][2]*m.m[1][1]) * inv
	c.m[1][0] = (m.m[1][2]*m.m[2][0] - m.m[1][0]*m.m[2][2]) * inv
	c.m[1][1] = (m.m[0][0]*m.m[2][2] - m.m[0][2]*m.m[2][0]) * inv
	c.m[1][2] = (m.m[0][2]*m.m[1][0] - m.m[0][0]*m.m[1][2]) * inv
	c.m[2][0] = (m.m[1][0]*m.m[2][1] - m.m[1][1]*m.m[2][0]) * inv
	c.m[2][1] = (m.m[0][1]*m.m[2][0] - m.m[0][0]*m.m[2][1]) * inv
	c.m[2][2] = (m.m[0][0]*m.m[1][1] - m.m[0][1]*m.m[1][0]) * inv
	return c, true
}
