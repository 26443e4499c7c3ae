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
)

const runStateFile = "run.state"

// RunState is the scheduler-level snapshot persisted at the run
// directory root, per spec.md §6.4: population size, tolerances,
// operator weights, generation target, and the crystal directories that
// make up the population.
type RunState struct {
	PopSize          int
	GenerationTarget int
	CartTol          float64
	AngleTol         float64
	ProbCrossover    float64
	ProbStripple     float64
	ProbPermustrain  float64
	NextID           int
	CrystalDirs      []string
}

// WriteRunState writes dir/run.state describing rs.
func WriteRunState(dir string, rs RunState) error {
	f, err := os.Create(filepath.Join(dir, runStateFile))
	if err != nil {
		return errors.Wrapf(err, "state: create run.state in %s", dir)
	}
	defer f.Close()
	return writeRunState(f, rs)
}

func writeRunState(w io.Writer, rs RunState) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "pop_size: %d\n", rs.PopSize)
	fmt.Fprintf(bw, "generation_target: %d\n", rs.GenerationTarget)
	fmt.Fprintf(bw, "cart_tol: %.10f\n", rs.CartTol)
	fmt.Fprintf(bw, "angle_tol: %.10f\n", rs.AngleTol)
	fmt.Fprintf(bw, "prob_crossover: %.10f\n", rs.ProbCrossover)
	fmt.Fprintf(bw, "prob_stripple: %.10f\n", rs.ProbStripple)
	fmt.Fprintf(bw, "prob_permustrain: %.10f\n", rs.ProbPermustrain)
	fmt.Fprintf(bw, "next_id: %d\n", rs.NextID)
	fmt.Fprintln(bw, "begin_crystals")
	for _, dir := range rs.CrystalDirs {
		fmt.Fprintln(bw, dir)
	}
	fmt.Fprintln(bw, "end_crystals")
	return bw.Flush()
}

// ReadRunState reads dir/run.state.
func ReadRunState(dir string) (RunState, error) {
	f, err := os.Open(filepath.Join(dir, runStateFile))
	if err != nil {
		return RunState{}, errors.Wrapf(err, "state: open run.state in %s", dir)
	}
	defer f.Close()
	return readRunState(f)
}

func readRunState(r io.Reader) (RunState, error) {
	var rs RunState
	var inCrystals bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "begin_crystals" {
			inCrystals = true
			continue
		}
		if line == "end_crystals" {
			inCrystals = false
			continue
		}
		if inCrystals {
			rs.CrystalDirs = append(rs.CrystalDirs, line)
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "pop_size":
			rs.PopSize, _ = strconv.Atoi(value)
		case "generation_target":
			rs.GenerationTarget, _ = strconv.Atoi(value)
		case "cart_tol":
			rs.CartTol, _ = strconv.ParseFloat(value, 64)
		case "angle_tol":
			rs.AngleTol, _ = strconv.ParseFloat(value, 64)
		case "prob_crossover":
			rs.ProbCrossover, _ = strconv.ParseFloat(value, 64)
		case "prob_stripple":
			rs.ProbStripple, _ = strconv.ParseFloat(value, 64)
		case "prob_permustrain":
			rs.ProbPermustrain, _ = strconv.ParseFloat(value, 64)
		case "next_id":
			rs.NextID, _ = strconv.Atoi(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return RunState{}, errors.Wrap(err, "state: scan run.state")
	}
	return rs, nil
}
