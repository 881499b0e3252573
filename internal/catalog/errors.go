package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by diagnostics and file errors.
var (
	ErrDirectory         = errors.New("directory not readable")
	ErrUnreadableFile    = errors.New("file not readable")
	ErrInvalidCSV        = errors.New("invalid csv")
	ErrEmptyFile         = errors.New("empty file")
	ErrHeadersUnresolved = errors.New("missing required column")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrNonPositiveWeight = errors.New("non-positive weight")
	ErrNegativePrice     = errors.New("negative price")
	errShortRow          = errors.New("row shorter than header")
	errEmptyName         = errors.New("empty product name")
)

// ErrorKind classifies a load failure by how far it propagates.
type ErrorKind string

const (
	// KindFileSystem aborts the whole load.
	KindFileSystem ErrorKind = "filesystem"
	// KindFileSkip drops one file; loading continues.
	KindFileSkip ErrorKind = "file_skip"
	// KindRowSkip drops one row; the file continues.
	KindRowSkip ErrorKind = "row_skip"
)

// Error wraps an underlying error with operation context and a kind.
type Error struct {
	Op   string
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// Diagnostic describes one non-fatal problem found while loading.
type Diagnostic struct {
	Kind ErrorKind
	File string
	Line int // 1-based CSV line, 0 for whole-file problems
	Err  error
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", d.File, d.Line, d.Err)
	}
	return fmt.Sprintf("%s: %v", d.File, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
