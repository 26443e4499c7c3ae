package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/logging"
	"github.com/sarat-asymmetrica/xtalforge/internal/template"
)

// FileBacked is a demo LocalOptimizer that writes a POSCAR input per
// crystal directory and watches for a "result.txt" file dropped by an
// external process (or, absent one, synthesizes a plausible result itself
// so the scheduler loop has something to drive end to end without a real
// chemistry back-end wired in).
type FileBacked struct {
	BaseDir   string
	Symbols   template.ElementSymbols
	TotalSteps uint32
	Rand       *rand.Rand

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	jobs    map[uint64]string // job id -> crystal directory
	nextJob uint64
}

// NewFileBacked constructs a FileBacked optimizer rooted at baseDir,
// starting an fsnotify watcher on baseDir (WriteInputs adds each crystal
// directory to it). The watcher's events are not read: Status and
// GetQueue stat each crystal's result.txt on every call.
func NewFileBacked(baseDir string, symbols template.ElementSymbols, totalSteps uint32) (*FileBacked, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "filebacked: start fsnotify watcher")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "filebacked: create base dir %s", baseDir)
	}
	if err := w.Add(baseDir); err != nil {
		return nil, errors.Wrapf(err, "filebacked: watch base dir %s", baseDir)
	}
	return &FileBacked{
		BaseDir:    baseDir,
		Symbols:    symbols,
		TotalSteps: totalSteps,
		Rand:       rand.New(rand.NewSource(0)),
		watcher:    w,
		jobs:       make(map[uint64]string),
	}, nil
}

// Close stops the filesystem watcher.
func (f *FileBacked) Close() error {
	return f.watcher.Close()
}

func (f *FileBacked) crystalDir(c *crystal.Crystal) string {
	return filepath.Join(f.BaseDir, fmt.Sprintf("gen%d_id%d", c.Generation, c.ID))
}

func (f *FileBacked) WriteInputs(ctx context.Context, c *crystal.Crystal) error {
	dir := f.crystalDir(c)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "filebacked: create crystal dir %s", dir)
	}
	if err := f.watcher.Add(dir); err != nil {
		logging.Warn("filebacked: watch crystal dir failed", "dir", dir, "err", err)
	}

	poscar := template.Render("%POSCAR%", template.Context{
		Crystal: c,
		Symbols: f.Symbols,
		OptStep: c.CurrentStep,
	})
	path := filepath.Join(dir, "POSCAR")
	if err := os.WriteFile(path, []byte(poscar), 0o644); err != nil {
		return errors.Wrapf(err, "filebacked: write inputs %s", path)
	}
	return nil
}

func (f *FileBacked) Start(ctx context.Context, c *crystal.Crystal) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextJob++
	jobID := f.nextJob
	f.jobs[jobID] = f.crystalDir(c)

	resultPath := filepath.Join(f.crystalDir(c), "result.txt")
	if _, err := os.Stat(resultPath); os.IsNotExist(err) {
		if werr := f.writeSyntheticResult(c, resultPath); werr != nil {
			return 0, errors.Wrap(werr, "filebacked: synthesize result")
		}
	}
	return jobID, nil
}

// writeSyntheticResult fabricates a plausible optimizer output so the
// demo scheduler has something to advance on without a real chemistry
// back-end: a uuid tag line, purely for traceability in logs, and an
// enthalpy and energy (the same value) drawn from (-15, -10]. No atom
// positions are written.
func (f *FileBacked) writeSyntheticResult(c *crystal.Crystal, path string) error {
	enthalpy := -10.0 - f.Rand.Float64()*5
	tag := uuid.NewString()
	var b strings.Builder
	fmt.Fprintf(&b, "tag: %s\n", tag)
	fmt.Fprintf(&b, "enthalpy: %.6f\n", enthalpy)
	fmt.Fprintf(&b, "energy: %.6f\n", enthalpy)
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func (f *FileBacked) Status(ctx context.Context, c *crystal.Crystal, queue []QueueEntry) (JobStatus, error) {
	resultPath := filepath.Join(f.crystalDir(c), "result.txt")
	if _, err := os.Stat(resultPath); err == nil {
		return Success, nil
	}
	return Running, nil
}

func (f *FileBacked) GetQueue(ctx context.Context) ([]QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]QueueEntry, 0, len(f.jobs))
	for id, dir := range f.jobs {
		state := "Running"
		if _, err := os.Stat(filepath.Join(dir, "result.txt")); err == nil {
			state = "Success"
		}
		entries = append(entries, QueueEntry{JobID: id, StateCode: state})
	}
	return entries, nil
}

func (f *FileBacked) DeleteJob(ctx context.Context, c *crystal.Crystal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, dir := range f.jobs {
		if dir == f.crystalDir(c) {
			delete(f.jobs, id)
		}
	}
	return nil
}

func (f *FileBacked) Update(ctx context.Context, c *crystal.Crystal) error {
	resultPath := filepath.Join(f.crystalDir(c), "result.txt")
	data, err := os.ReadFile(resultPath)
	if err != nil {
		return errors.Wrapf(err, "filebacked: read result %s", resultPath)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "enthalpy":
			v, perr := strconv.ParseFloat(value, 64)
			if perr == nil {
				c.Enthalpy = v
				c.HasEnthalpy = true
			}
		case "energy":
			v, perr := strconv.ParseFloat(value, 64)
			if perr == nil {
				c.Energy = v
				c.HasEnergy = true
			}
		}
	}

	c.SyncCartFromFrac()
	c.Status = crystal.StepOptimized
	return nil
}

func (f *FileBacked) TotalOptSteps() uint32 {
	return f.TotalSteps
}
