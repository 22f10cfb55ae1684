// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package input parses grade exports into a canonical roster. Each export
// format is a Handler registered under a short name; the CLI picks one by
// name and binds its parameters at construction.
package input

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/sheet"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// Handler reads one input format. Implementations are immutable after
// construction and safe to reuse across runs.
type Handler interface {
	Name() string

	// Parse reads the sources in order and returns the roster they describe.
	// Aggregation across sources is commutative, so the order of sources only
	// affects student and assignment order, never scores.
	Parse(sources []types.Source) (*types.Roster, error)
}

// Format describes a registered input format.
type Format struct {
	Name        string
	Description string

	// Params is the zero value of the handler's parameter struct.
	Params any

	New func(raw map[string]any) (Handler, error)
}

// ErrUnknownFormat is returned by New for an unregistered name.
var ErrUnknownFormat = errors.New("unknown input format")

var registry = map[string]Format{}

func register(f Format) {
	if _, dup := registry[f.Name]; dup {
		panic("input: duplicate format " + f.Name)
	}
	registry[f.Name] = f
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, bool) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Names returns the registered format names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Formats returns every registered format, sorted by name.
func Formats() []Format {
	out := make([]Format, 0, len(registry))
	for _, n := range Names() {
		out = append(out, registry[n])
	}
	return out
}

// New constructs the handler registered under name with the given raw
// parameters.
func New(name string, raw map[string]any) (Handler, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
	}
	h, err := f.New(raw)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", f.Name, err)
	}
	return h, nil
}

// readTables decodes every source, attaching the source name to errors.
func readTables(sources []types.Source) ([]types.Table, error) {
	if len(sources) == 0 {
		return nil, types.NewError(types.ErrMalformedInput, "no input sources")
	}
	out := make([]types.Table, len(sources))
	for i, src := range sources {
		t, err := sheet.ReadTable(src)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// columns returns the index of every named column, or ErrSchemaMismatch
// listing the missing ones.
func columns(t types.Table, source string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = t.Column(n)
		if idx[i] < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &types.ConversionError{
			Kind:   types.ErrSchemaMismatch,
			Source: source,
			Detail: "missing column(s) " + strings.Join(missing, ", "),
		}
	}
	return idx, nil
}

// sourceLabel is the source name without directory or extension, used to
// name per-source assignments.
func sourceLabel(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return name
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// spreadsheetRow converts a data-row index to the 1-based row number a user
// sees in a spreadsheet, counting the header.
func spreadsheetRow(r int) int { return r + 2 }

// attendance tracks per-source presence so a student listed twice in one
// source with different results is reported instead of silently merged.
type attendance struct {
	source string
	seen   map[string]bool
	rows   map[string]int
}

func newAttendance(source string) *attendance {
	return &attendance{source: source, seen: map[string]bool{}, rows: map[string]int{}}
}

// mark records that s attended (or not) at row r and reports whether this is
// the first row for s. A repeated student with the same result is accepted;
// a different result is ErrAmbiguousRecord.
func (a *attendance) mark(s types.Student, attended bool, r int) (bool, error) {
	k := s.Key()
	if prev, ok := a.seen[k]; ok {
		if prev != attended {
			return false, &types.ConversionError{
				Kind:    types.ErrAmbiguousRecord,
				Source:  a.source,
				Row:     spreadsheetRow(r),
				Student: s.String(),
				Detail:  fmt.Sprintf("conflicts with row %d", spreadsheetRow(a.rows[k])),
			}
		}
		return false, nil
	}
	a.seen[k] = attended
	a.rows[k] = r
	return true, nil
}

// uniqueLabels returns one label per source. Sources sharing a base name get
// a numeric suffix so their assignments stay distinct.
func uniqueLabels(sources []types.Source) []string {
	out := make([]string, len(sources))
	used := map[string]int{}
	for i, src := range sources {
		l := sourceLabel(src.Name)
		used[l]++
		if n := used[l]; n > 1 {
			l = fmt.Sprintf("%s (%d)", l, n)
		}
		out[i] = l
	}
	return out
}
