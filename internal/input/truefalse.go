// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// TrueFalseParams configures the generic attendance sheet reader.
type TrueFalseParams struct {
	Points     float64 `mapstructure:"points" validate:"required,gt=0" help:"points awarded per day attended"`
	Assignment string  `mapstructure:"assignment" help:"sum every day into this assignment; empty keeps one assignment per column"`
}

// TrueFalse reads attendance sheets whose first column names the student and
// whose remaining columns are days holding true/false marks.
type TrueFalse struct {
	params TrueFalseParams
}

func init() {
	register(Format{
		Name:        "truefalse",
		Description: "attendance sheet: student name, then one true/false column per day",
		Params:      TrueFalseParams{},
		New: func(raw map[string]any) (Handler, error) {
			var p TrueFalseParams
			if err := params.Decode(raw, &p); err != nil {
				return nil, err
			}
			return NewTrueFalse(p)
		},
	})
}

// NewTrueFalse returns a TrueFalse reader for p.
func NewTrueFalse(p TrueFalseParams) (*TrueFalse, error) {
	if p.Points <= 0 {
		return nil, fmt.Errorf("%w: points must be greater than 0", params.ErrInvalid)
	}
	return &TrueFalse{params: p}, nil
}

// Name implements Handler.
func (h *TrueFalse) Name() string { return "truefalse" }

// Parse implements Handler.
func (h *TrueFalse) Parse(sources []types.Source) (*types.Roster, error) {
	tables, err := readTables(sources)
	if err != nil {
		return nil, err
	}

	var b types.RosterBuilder
	total := strings.TrimSpace(h.params.Assignment)
	if total != "" {
		b.AddAssignment(total)
	}
	labels := uniqueLabels(sources)

	for i, t := range tables {
		name := sources[i].Name
		if len(t.Header) < 2 {
			return nil, &types.ConversionError{
				Kind:   types.ErrSchemaMismatch,
				Source: name,
				Detail: "want a name column and at least one day column",
			}
		}

		days := make([]string, len(t.Header))
		for c := 1; c < len(t.Header); c++ {
			days[c] = strings.TrimSpace(t.Header[c])
			if days[c] == "" {
				days[c] = fmt.Sprintf("day %d", c)
			}
			if len(sources) > 1 {
				days[c] = fmt.Sprintf("%s (from file %s)", days[c], labels[i])
			}
			if total == "" {
				b.AddAssignment(days[c])
			}
		}

		if err := h.parseSheet(&b, t, name, days, total); err != nil {
			return nil, types.InSource(err, name)
		}
	}
	return b.Build(), nil
}

func (h *TrueFalse) parseSheet(b *types.RosterBuilder, t types.Table, source string, days []string, total string) error {
	seen := map[string]int{}
	for r := range t.Rows {
		if t.IsBlankRow(r) {
			continue
		}
		name := strings.TrimSpace(t.Cell(r, 0))
		if name == "" {
			continue
		}
		s := types.Student{Name: name}

		marks := make([]bool, len(t.Header))
		for c := 1; c < len(t.Header); c++ {
			ok, err := attended(t.Cell(r, c))
			if err != nil {
				return &types.ConversionError{
					Kind:       types.ErrMalformedInput,
					Row:        spreadsheetRow(r),
					Student:    name,
					Assignment: t.Header[c],
					Err:        err,
				}
			}
			marks[c] = ok
		}

		if prev, dup := seen[s.Key()]; dup {
			if !sameMarks(marks, rowMarks(t, prev)) {
				return &types.ConversionError{
					Kind:    types.ErrAmbiguousRecord,
					Row:     spreadsheetRow(r),
					Student: name,
					Detail:  fmt.Sprintf("conflicts with row %d", spreadsheetRow(prev)),
				}
			}
			continue
		}
		seen[s.Key()] = r

		for c := 1; c < len(t.Header); c++ {
			pts := types.Number(0)
			if marks[c] {
				pts = types.Number(h.params.Points)
			}
			var err error
			if total != "" {
				err = b.Accumulate(s, total, pts)
			} else {
				err = b.Set(s, days[c], pts, nil)
			}
			if err != nil {
				return types.AtRow(err, spreadsheetRow(r))
			}
		}
	}
	return nil
}

func rowMarks(t types.Table, r int) []bool {
	out := make([]bool, len(t.Header))
	for c := 1; c < len(t.Header); c++ {
		out[c], _ = attended(t.Cell(r, c))
	}
	return out
}

func sameMarks(a, b []bool) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// attended applies the attendance cell rules: empty is false, boolean words
// and numbers (> 0) are read directly, otherwise a lone T or F decides.
func attended(cell string) (bool, error) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "nan") {
		return false, nil
	}
	switch strings.ToLower(s) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v, nil
	}
	if f, ok := types.ParseValue(s).Float(); ok {
		return f > 0, nil
	}

	upper := strings.ToUpper(s)
	hasT, hasF := strings.Contains(upper, "T"), strings.Contains(upper, "F")
	switch {
	case hasT && !hasF:
		return true, nil
	case hasF && !hasT:
		return false, nil
	}
	return false, fmt.Errorf("no attendance rule for %q", cell)
}
