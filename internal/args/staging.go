package args

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spherical/pdfproc/internal/domain"
)

// InputMode selects how in-memory sources reach the tool.
type InputMode string

const (
	// InputFile stages buffers to a private temporary file.
	InputFile InputMode = "file"
	// InputStdin pipes buffers to the tool's stdin ("-").
	InputStdin InputMode = "stdin"
)

// ParseInputMode validates a configured input mode.
func ParseInputMode(s string) (InputMode, error) {
	switch InputMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", InputFile:
		return InputFile, nil
	case InputStdin:
		return InputStdin, nil
	}
	return "", domain.ConfigError(fmt.Sprintf("unknown input mode %q", s), nil)
}

// Input is what the tool reads: a path, or "-" plus bytes for stdin.
type Input struct {
	Path  string
	Stdin []byte
}

// StdinPath is the path poppler tools read standard input from.
const StdinPath = "-"

const (
	inputPattern  = "pdfproc-in-*.pdf"
	renderPattern = "pdfproc-render-*"
	// RenderPrefix is the file name prefix pdftocairo is told to use.
	RenderPrefix = "page"
)

// Scope owns the temporary files and directories of one operation.
// Release removes everything the scope created and may be called any
// number of times.
type Scope struct {
	tempDir string

	mu       sync.Mutex
	cleanups []func() error
	released bool
}

// NewScope creates a scope that creates temporaries under tempDir
// (os.TempDir when empty).
func NewScope(tempDir string) *Scope {
	return &Scope{tempDir: tempDir}
}

func (s *Scope) track(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		err := fn()
		return errors.Join(errors.New("scope already released"), err)
	}
	s.cleanups = append(s.cleanups, fn)
	return nil
}

// StageInput prepares src for a tool invocation.
// Path sources are made absolute so that a leading '-' is never read as a flag.
func (s *Scope) StageInput(src domain.Source, mode InputMode) (Input, error) {
	if !src.IsBuffer() {
		abs, err := filepath.Abs(src.Path())
		if err != nil {
			return Input{}, domain.InvalidArgumentsError(fmt.Sprintf("resolve %q", src.Path()), err)
		}
		return Input{Path: abs}, nil
	}

	data := src.Bytes()
	if len(data) == 0 {
		return Input{}, domain.InvalidArgumentsError("pdf buffer is empty", nil)
	}
	if mode == InputStdin {
		return Input{Path: StdinPath, Stdin: data}, nil
	}

	f, err := os.CreateTemp(s.tempDir, inputPattern)
	if err != nil {
		return Input{}, domain.IOError("create temporary input", err)
	}
	name := f.Name()
	if err := s.track(func() error { return removeIfExists(name) }); err != nil {
		_ = f.Close()
		return Input{}, domain.IOError("stage input", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return Input{}, domain.IOError("write temporary input", err)
	}
	if err := f.Close(); err != nil {
		return Input{}, domain.IOError("close temporary input", err)
	}
	return Input{Path: name}, nil
}

// ReserveOutputDir creates a private directory for rendered pages and
// returns it along with the output prefix to hand to pdftocairo.
func (s *Scope) ReserveOutputDir() (dir, prefix string, err error) {
	dir, err = os.MkdirTemp(s.tempDir, renderPattern)
	if err != nil {
		return "", "", domain.IOError("create render directory", err)
	}
	if err := s.track(func() error { return os.RemoveAll(dir) }); err != nil {
		return "", "", domain.IOError("reserve render directory", err)
	}
	return dir, filepath.Join(dir, RenderPrefix), nil
}

// Release removes every temporary in reverse creation order.
func (s *Scope) Release() error {
	s.mu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.released = true
	s.mu.Unlock()

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		if err := cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
