// Package state persists and reloads the plain-text crystal.state and
// run.state files of spec.md §6.4. Each format is a line-oriented
// `key: value` scanner in the style of the teacher's PDB parser
// (fixed-keyword lines plus a trailing atom block), not a binary or
// structured-document encoding.
package state

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

const crystalStateFile = "crystal.state"

// WriteCrystalState writes dir/crystal.state describing c.
func WriteCrystalState(dir string, c *crystal.Crystal) error {
	f, err := os.Create(filepath.Join(dir, crystalStateFile))
	if err != nil {
		return errors.Wrapf(err, "state: create crystal.state in %s", dir)
	}
	defer f.Close()
	return writeCrystalState(f, c)
}

func writeCrystalState(w io.Writer, c *crystal.Crystal) error {
	bw := bufio.NewWriter(w)
	a, b, cc := c.Matrix.A(), c.Matrix.B(), c.Matrix.C()
	fmt.Fprintf(bw, "generation: %d\n", c.Generation)
	fmt.Fprintf(bw, "id: %d\n", c.ID)
	fmt.Fprintf(bw, "status: %s\n", c.Status)
	fmt.Fprintf(bw, "current_step: %d\n", c.CurrentStep)
	fmt.Fprintf(bw, "fail_count: %d\n", c.FailCount)
	fmt.Fprintf(bw, "has_enthalpy: %t\n", c.HasEnthalpy)
	fmt.Fprintf(bw, "enthalpy: %.10f\n", c.Enthalpy)
	fmt.Fprintf(bw, "has_energy: %t\n", c.HasEnergy)
	fmt.Fprintf(bw, "energy: %.10f\n", c.Energy)
	fmt.Fprintf(bw, "has_job_id: %t\n", c.HasJobID)
	fmt.Fprintf(bw, "job_id: %d\n", c.JobID)
	fmt.Fprintf(bw, "spacegroup_num: %d\n", c.SpacegroupNum)
	fmt.Fprintf(bw, "spacegroup_sym: %s\n", c.SpacegroupSym)
	fmt.Fprintf(bw, "lineage_operator: %s\n", c.Lineage.Operator)
	fmt.Fprintf(bw, "lineage_description: %s\n", c.Lineage.Description)
	parentFields := make([]string, len(c.Lineage.ParentIDs))
	for i, id := range c.Lineage.ParentIDs {
		parentFields[i] = strconv.Itoa(id)
	}
	fmt.Fprintf(bw, "lineage_parents: %s\n", strings.Join(parentFields, ","))
	fmt.Fprintf(bw, "cell_a: %.10f %.10f %.10f\n", a.X, a.Y, a.Z)
	fmt.Fprintf(bw, "cell_b: %.10f %.10f %.10f\n", b.X, b.Y, b.Z)
	fmt.Fprintf(bw, "cell_c: %.10f %.10f %.10f\n", cc.X, cc.Y, cc.Z)
	fmt.Fprintf(bw, "num_atoms: %d\n", len(c.Atoms))
	fmt.Fprintln(bw, "begin_atoms")
	for _, atom := range c.Atoms {
		fmt.Fprintf(bw, "atom %d %.10f %.10f %.10f\n", atom.AtomicNumber, atom.Frac.X, atom.Frac.Y, atom.Frac.Z)
	}
	fmt.Fprintln(bw, "end_atoms")
	return bw.Flush()
}

// ReadCrystalState reads dir/crystal.state and reconstructs the crystal
// it describes.
func ReadCrystalState(dir string) (*crystal.Crystal, error) {
	f, err := os.Open(filepath.Join(dir, crystalStateFile))
	if err != nil {
		return nil, errors.Wrapf(err, "state: open crystal.state in %s", dir)
	}
	defer f.Close()
	return readCrystalState(f)
}

func readCrystalState(r io.Reader) (*crystal.Crystal, error) {
	var a, b, cc linalg.Vector3
	c := &crystal.Crystal{}
	var inAtoms bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "begin_atoms" {
			inAtoms = true
			continue
		}
		if line == "end_atoms" {
			inAtoms = false
			continue
		}
		if inAtoms {
			fields := strings.Fields(line)
			if len(fields) != 5 || fields[0] != "atom" {
				return nil, errors.Errorf("state: malformed atom line %q", line)
			}
			z, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "state: atomic number in %q", line)
			}
			x, _ := strconv.ParseFloat(fields[2], 64)
			y, _ := strconv.ParseFloat(fields[3], 64)
			zc, _ := strconv.ParseFloat(fields[4], 64)
			c.Atoms = append(c.Atoms, crystal.Atom{AtomicNumber: uint32(z), Frac: linalg.Vector3{X: x, Y: y, Z: zc}})
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "generation":
			c.Generation, _ = strconv.Atoi(value)
		case "id":
			c.ID, _ = strconv.Atoi(value)
		case "status":
			c.Status = statusFromString(value)
		case "current_step":
			c.CurrentStep, _ = strconv.Atoi(value)
		case "fail_count":
			c.FailCount, _ = strconv.Atoi(value)
		case "has_enthalpy":
			c.HasEnthalpy = value == "true"
		case "enthalpy":
			c.Enthalpy, _ = strconv.ParseFloat(value, 64)
		case "has_energy":
			c.HasEnergy = value == "true"
		case "energy":
			c.Energy, _ = strconv.ParseFloat(value, 64)
		case "has_job_id":
			c.HasJobID = value == "true"
		case "job_id":
			jobID, _ := strconv.ParseUint(value, 10, 64)
			c.JobID = jobID
		case "spacegroup_num":
			c.SpacegroupNum, _ = strconv.Atoi(value)
		case "spacegroup_sym":
			c.SpacegroupSym = value
		case "lineage_operator":
			c.Lineage.Operator = value
		case "lineage_description":
			c.Lineage.Description = value
		case "lineage_parents":
			if value != "" {
				for _, field := range strings.Split(value, ",") {
					id, err := strconv.Atoi(field)
					if err == nil {
						c.Lineage.ParentIDs = append(c.Lineage.ParentIDs, id)
					}
				}
			}
		case "cell_a":
			a = parseVector(value)
		case "cell_b":
			b = parseVector(value)
		case "cell_c":
			cc = parseVector(value)
		case "num_atoms":
			// informational only; len(c.Atoms) is authoritative
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "state: scan crystal.state")
	}

	c.Matrix = linalg.NewFromColumns(a, b, cc)
	c.SyncCartFromFrac()
	return c, nil
}

func parseVector(value string) linalg.Vector3 {
	fields := strings.Fields(value)
	if len(fields) != 3 {
		return linalg.Vector3{}
	}
	x, _ := strconv.ParseFloat(fields[0], 64)
	y, _ := strconv.ParseFloat(fields[1], 64)
	z, _ := strconv.ParseFloat(fields[2], 64)
	return linalg.Vector3{X: x, Y: y, Z: z}
}

func statusFromString(value string) crystal.Status {
	for s := crystal.Empty; s <= crystal.Duplicate; s++ {
		if s.String() == value {
			return s
		}
	}
	return crystal.Empty
}
