// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package output renders a roster into a destination spreadsheet layout,
// merging onto an existing document when one is given.
package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// Handler renders one output format.
type Handler interface {
	Name() string

	// Render returns the document for roster. When existing is nil the
	// format's default layout is produced; otherwise existing is merged with
	// policy and every cell the roster does not touch is left as it was.
	// On error no document is returned.
	Render(roster *types.Roster, existing *types.Document, policy merge.Policy) (*types.Document, []merge.Warning, error)
}

// Format describes a registered output format.
type Format struct {
	Name        string
	Description string

	// NeedsTemplate marks formats that cannot render without an existing
	// document.
	NeedsTemplate bool

	Params any
	New    func(raw map[string]any) (Handler, error)
}

// ErrUnknownFormat is returned by New for an unregistered name.
var ErrUnknownFormat = errors.New("unknown output format")

var registry = map[string]Format{}

func register(f Format) {
	if _, dup := registry[f.Name]; dup {
		panic("output: duplicate format " + f.Name)
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

// New constructs the handler registered under name.
func New(name string, raw map[string]any) (Handler, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
	}
	h, err := f.New(raw)
	if err != nil {
		return nil, fmt.Errorf("output %s: %w", f.Name, err)
	}
	return h, nil
}

// matchesLabel reports whether a destination cell naming a student (by
// display name, or by login when the name was unknown) refers to s.
func matchesLabel(s types.Student, label string) bool {
	k := types.NormalizeKey(label)
	if k == "" {
		return false
	}
	return s.Matches(types.Student{Name: label}) || types.NormalizeKey(s.Label()) == k
}

// findRow returns the first data row whose key column names s, skipping
// rows rejected by skip.
func findRow(t types.Table, col int, s types.Student, skip func(r int) bool) (int, bool) {
	for r := range t.Rows {
		if skip != nil && skip(r) {
			continue
		}
		if matchesLabel(s, t.Cell(r, col)) {
			return r, true
		}
	}
	return -1, false
}

func unmappable(a, detail string) error {
	return &types.ConversionError{Kind: types.ErrUnmappableAssignment, Assignment: a, Detail: detail}
}
