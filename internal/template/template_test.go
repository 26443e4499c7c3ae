package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

func sampleCrystal() *crystal.Crystal {
	m := linalg.Diag(4, 4, 4)
	c := crystal.New(m, nil)
	c.ID = 7
	c.Generation = 2
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c.AddAtom(17, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	return c
}

func TestRenderSubstitutesKnownKeys(t *testing.T) {
	ctx := Context{Crystal: sampleCrystal(), Symbols: ElementSymbols{11: "Na", 17: "Cl"}, Filename: "POSCAR"}
	out := Render("gen=%gen% id=%id% file=%filename% atoms=%numAtoms%", ctx)
	assert.Equal(t, "gen=2 id=7 file=POSCAR atoms=2", out)
}

func TestRenderLeavesUnknownKeysLiteral(t *testing.T) {
	ctx := Context{Crystal: sampleCrystal()}
	out := Render("value=%notARecognizedKey%", ctx)
	assert.Equal(t, "value=%notARecognizedKey%", out)
}

func TestRenderBohrScalesAngstrom(t *testing.T) {
	ctx := Context{Crystal: sampleCrystal()}
	out := Render("%cellVector1Angstrom%|%cellVector1Bohr%", ctx)
	parts := strings.Split(out, "|")
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "4.00000000")
	assert.Contains(t, parts[1], "7.55890396")
}

func TestRenderPOSCARGroupsByElementSorted(t *testing.T) {
	ctx := Context{Crystal: sampleCrystal(), Symbols: ElementSymbols{11: "Na", 17: "Cl"}}
	out := Render("%POSCAR%", ctx)
	lines := strings.Split(out, "\n")
	require.True(t, len(lines) >= 8)
	assert.Equal(t, "1.0", lines[1])
	assert.Equal(t, "Cl Na", lines[5])
	assert.Equal(t, "1 1", lines[6])
	assert.Equal(t, "Direct", lines[7])
}
