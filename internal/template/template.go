// Package template implements the %key% placeholder substitution engine
// of spec.md §6.2: local-optimizer input files are plain-text templates
// with a fixed, closed set of recognized keys.
package template

import (
	"fmt"
	"math"
	"regexp"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

// bohrPerAngstrom converts angstrom lengths to Bohr units, per spec.md
// §6.2's cellVectorNBohr / cellMatrixBohr keys.
const bohrPerAngstrom = 1.889725989

// ElementSymbols maps an atomic number to its symbol, used for POSCAR
// rendering and per-element grouping. Callers supply the subset their run
// uses; a missing entry renders as "Xx".
type ElementSymbols map[uint32]string

func (e ElementSymbols) symbol(z uint32) string {
	if s, ok := e[z]; ok {
		return s
	}
	return "Xx"
}

// Context carries the values a render call substitutes in, beyond what it
// can derive from the crystal itself.
type Context struct {
	Crystal     *crystal.Crystal
	Symbols     ElementSymbols
	User        [4]string
	Filename    string
	RemotePath  string
	OptStep     int
	Description string
}

var placeholder = regexp.MustCompile(`%([A-Za-z0-9]+)%`)

// Render substitutes every recognized %key% placeholder in tmpl. Unknown
// keys are left untouched, exactly as the literal text "%key%", per
// spec.md §6.2.
func Render(tmpl string, ctx Context) string {
	values := keyValues(ctx)
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[1 : len(match)-1]
		if v, ok := values[key]; ok {
			return v
		}
		return match
	})
}

func keyValues(ctx Context) map[string]string {
	c := ctx.Crystal
	a, b, cc, alpha, beta, gamma := c.CellParams()
	va, vb, vc := c.Matrix.A(), c.Matrix.B(), c.Matrix.C()

	values := map[string]string{
		"coords":              coordsCartesian(c, ctx.Symbols, false),
		"coordsId":            coordsCartesian(c, ctx.Symbols, true),
		"coordsFrac":          coordsFractional(c, ctx.Symbols, false),
		"coordsFracId":        coordsFractional(c, ctx.Symbols, true),
		"cellMatrixAngstrom":  cellMatrix(va, vb, vc, 1),
		"cellMatrixBohr":      cellMatrix(va, vb, vc, bohrPerAngstrom),
		"cellVector1Angstrom": vectorLine(va, 1),
		"cellVector2Angstrom": vectorLine(vb, 1),
		"cellVector3Angstrom": vectorLine(vc, 1),
		"cellVector1Bohr":     vectorLine(va, bohrPerAngstrom),
		"cellVector2Bohr":     vectorLine(vb, bohrPerAngstrom),
		"cellVector3Bohr":     vectorLine(vc, bohrPerAngstrom),
		"a":           fmt.Sprintf("%.8f", a),
		"b":           fmt.Sprintf("%.8f", b),
		"c":           fmt.Sprintf("%.8f", cc),
		"alphaRad":    fmt.Sprintf("%.8f", alpha),
		"betaRad":     fmt.Sprintf("%.8f", beta),
		"gammaRad":    fmt.Sprintf("%.8f", gamma),
		"alphaDeg":    fmt.Sprintf("%.8f", degrees(alpha)),
		"betaDeg":     fmt.Sprintf("%.8f", degrees(beta)),
		"gammaDeg":    fmt.Sprintf("%.8f", degrees(gamma)),
		"volume":      fmt.Sprintf("%.8f", c.Volume()),
		"numAtoms":    fmt.Sprintf("%d", len(c.Atoms)),
		"numSpecies":  fmt.Sprintf("%d", len(c.Composition())),
		"filename":    ctx.Filename,
		"rempath":     ctx.RemotePath,
		"gen":         fmt.Sprintf("%d", c.Generation),
		"id":          fmt.Sprintf("%d", c.ID),
		"optStep":     fmt.Sprintf("%d", ctx.OptStep),
		"description": ctx.Description,
		"POSCAR":      poscar(c, ctx.Symbols),
	}
	for i, u := range ctx.User {
		values[fmt.Sprintf("user%d", i+1)] = u
	}
	return values
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func vectorLine(v linalg.Vector3, scale float64) string {
	return fmt.Sprintf("%.8f %.8f %.8f", v.X*scale, v.Y*scale, v.Z*scale)
}

func cellMatrix(a, b, c linalg.Vector3, scale float64) string {
	return vectorLine(a, scale) + "\n" + vectorLine(b, scale) + "\n" + vectorLine(c, scale)
}
