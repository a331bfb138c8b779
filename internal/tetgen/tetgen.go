package tetgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/airmesh-cloth/internal/airmesh"
	"github.com/Faultbox/airmesh-cloth/internal/logger"
)

// DefaultPath is the binary looked up on PATH when none is configured.
const DefaultPath = "tetgen"

// baseSwitches: zero-based numbering, quiet.
const baseSwitches = "zQ"

const inputName = "airmesh.poly"

// Tetrahedralizer runs the TetGen binary.
type Tetrahedralizer struct {
	// Path to the tetgen executable.
	Path string
	// TempDir is where per-call working directories are created; empty means os.TempDir.
	TempDir string
}

// New returns a Tetrahedralizer for the binary at path.
func New(path string) *Tetrahedralizer {
	if path == "" {
		path = DefaultPath
	}
	return &Tetrahedralizer{Path: path}
}

// Tetrahedralize implements airmesh.Tetrahedralizer.
func (t *Tetrahedralizer) Tetrahedralize(ctx context.Context, in airmesh.Input) ([]airmesh.Tetrahedron, error) {
	dir, err := os.MkdirTemp(t.TempDir, "airmesh-*")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	polyPath := filepath.Join(dir, inputName)
	if err := writePolyFile(polyPath, in); err != nil {
		return nil, err
	}

	args := []string{Switches(in.Switches), polyPath}
	log := logger.Named("tetgen")
	log.Debug("running tetgen",
		zap.String("path", t.Path),
		zap.Strings("args", args),
		zap.Int("points", in.NumPoints()),
		zap.Int("facets", len(in.Facets)))

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Dir = dir
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return nil, &airmesh.StatusError{Code: exitErr.ExitCode(), Detail: lastLine(output.String())}
		}
		return nil, fmt.Errorf("running %s: %w", t.Path, err)
	}

	elePath := filepath.Join(dir, strings.TrimSuffix(inputName, ".poly")+".1.ele")
	f, err := os.Open(elePath)
	if err != nil {
		return nil, fmt.Errorf("opening tetgen output: %w", err)
	}
	defer f.Close()

	tets, err := ParseEle(f)
	if err != nil {
		return nil, err
	}

	log.Debug("tetgen finished", zap.Int("tetrahedra", len(tets)), zap.Duration("took", time.Since(start)))
	return tets, nil
}

// Switches returns the command-line switch argument for the user switches s.
// A leading dash in s is accepted.
func Switches(s string) string {
	return "-" + baseSwitches + strings.TrimPrefix(strings.TrimSpace(s), "-")
}

func writePolyFile(path string, in airmesh.Input) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating .poly: %w", err)
	}
	if err := WritePoly(f, in); err != nil {
		f.Close()
		return fmt.Errorf("writing .poly: %w", err)
	}
	return f.Close()
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
