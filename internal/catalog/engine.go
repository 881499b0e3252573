package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Engine owns the in-memory catalog.
// Loads are sequential; reads may run concurrently with each other.
type Engine struct {
	mu      sync.RWMutex
	records []Record
	maxName int
	files   []string
	skipped []SkippedFile
	diags   []Diagnostic
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an empty catalog.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load scans dir for price lists and appends their records to the catalog.
// Only a missing or unreadable directory returns an error; per-file and
// per-row problems are reported in the result's Diagnostics.
func (e *Engine) Load(dir string) (*LoadResult, error) {
	names, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir, _ = os.Getwd()
	}

	res := &LoadResult{RunID: uuid.New().String(), Dir: dir}
	logger := e.logger.With("run_id", res.RunID, "dir", dir)
	logger.Info("catalog load started", "candidates", len(names))

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, name := range names {
		parsed, err := parseFile(filepath.Join(dir, name), name)
		res.RowsSkipped += parsed.rowsSkipped
		res.Diagnostics = append(res.Diagnostics, parsed.diags...)

		if err != nil {
			diag := Diagnostic{Kind: KindFileSkip, File: name, Err: err}
			res.Diagnostics = append(res.Diagnostics, diag)
			res.Skipped = append(res.Skipped, SkippedFile{File: name, Reason: err.Error()})
			logger.Warn("file skipped", "file", name, "error", err)
			continue
		}

		for _, d := range parsed.diags {
			logger.Warn("row skipped", "file", d.File, "line", d.Line, "error", d.Err)
		}

		e.records = append(e.records, parsed.records...)
		e.maxName = max(e.maxName, parsed.maxName)
		res.Records += len(parsed.records)
		res.Files = append(res.Files, name)
		if parsed.replaced > 0 {
			logger.Warn("invalid UTF-8 replaced", "file", name, "replaced", parsed.replaced)
		}
		logger.Debug("file loaded",
			"file", name,
			"bytes", parsed.bytes,
			"records", len(parsed.records),
			"rows_skipped", parsed.rowsSkipped,
		)
	}

	e.files = append(e.files, res.Files...)
	e.skipped = append(e.skipped, res.Skipped...)
	e.diags = append(e.diags, res.Diagnostics...)

	logger.Info("catalog load finished",
		"files", len(res.Files),
		"skipped_files", len(res.Skipped),
		"records", res.Records,
		"rows_skipped", res.RowsSkipped,
	)

	return res, nil
}

// fileResult holds what one file contributed before it is committed.
type fileResult struct {
	records     []Record
	rowsSkipped int
	maxName     int
	diags       []Diagnostic
	bytes       int64
	replaced    int
}

// parseFile reads one price list. A non-nil error means the file is skipped
// as a whole; its records are then discarded.
func parseFile(path, name string) (fileResult, error) {
	var out fileResult

	f, err := os.Open(path)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	defer f.Close()

	src := NewSourceReader(f)
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return out, ErrEmptyFile
	}
	if err != nil {
		return out, readError(err)
	}

	roles := ResolveHeaders(header)
	if !roles.Resolved() {
		return out, fmt.Errorf("%w: %s", ErrHeadersUnresolved, describeRoles(roles.Missing()))
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return fileResult{}, readError(err)
			}
			out.rowsSkipped++
			out.diags = append(out.diags, Diagnostic{
				Kind: KindRowSkip,
				File: name,
				Line: pe.Line,
				Err:  fmt.Errorf("%w: %w", ErrInvalidCSV, pe.Err),
			})
			continue
		}

		rec, err := parseRow(row, roles, name)
		if err != nil {
			out.rowsSkipped++
			if errors.Is(err, errShortRow) || errors.Is(err, errEmptyName) {
				continue
			}
			line, _ := r.FieldPos(0)
			out.diags = append(out.diags, Diagnostic{Kind: KindRowSkip, File: name, Line: line, Err: err})
			continue
		}

		out.records = append(out.records, rec)
		out.maxName = max(out.maxName, utf8.RuneCountInString(rec.Name))
	}

	out.bytes, out.replaced = src.BytesRead, src.Replaced
	return out, nil
}

// readError classifies a reader failure.
func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}
	return fmt.Errorf("%w: %w", ErrUnreadableFile, err)
}

// parseRow builds a record from one data row.
func parseRow(row []string, roles HeaderRoles, file string) (Record, error) {
	if len(row) < roles.width() {
		return Record{}, errShortRow
	}

	name := strings.TrimSpace(row[roles.Product])
	if name == "" {
		return Record{}, errEmptyName
	}

	price, err := ParseDecimal(row[roles.Price])
	if err != nil {
		return Record{}, fmt.Errorf("price: %w", err)
	}
	weight, err := ParseDecimal(row[roles.Weight])
	if err != nil {
		return Record{}, fmt.Errorf("weight: %w", err)
	}

	if !weight.IsPositive() {
		return Record{}, fmt.Errorf("%w: %s", ErrNonPositiveWeight, weight.String())
	}
	if price.IsNegative() {
		return Record{}, fmt.Errorf("%w: %s", ErrNegativePrice, price.String())
	}

	return Record{
		Name:       name,
		Price:      price,
		Weight:     weight,
		SourceFile: file,
		PricePerKg: PricePerKg(price, weight),
	}, nil
}

// describeRoles lists roles with the headers each accepts,
// e.g. "price (цена|розница)".
func describeRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = r.String() + " (" + strings.Join(Synonyms(r), "|") + ")"
	}
	return strings.Join(parts, ", ")
}

// Records returns a copy of the catalog in insertion order.
func (e *Engine) Records() []Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Record(nil), e.records...)
}

// Len returns the number of records in the catalog.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}

// MaxNameLength returns the longest product name seen, in runes.
func (e *Engine) MaxNameLength() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.maxName
}

// Summary returns the cumulative outcome of every load.
func (e *Engine) Summary() Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Summary{
		Files:         append([]string(nil), e.files...),
		Skipped:       append([]SkippedFile(nil), e.skipped...),
		Records:       len(e.records),
		MaxNameLength: e.maxName,
		Diagnostics:   append([]Diagnostic(nil), e.diags...),
	}
}
