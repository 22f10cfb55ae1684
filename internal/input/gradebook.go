// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package input

import (
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// GradebookParams configures the Canvas gradebook reader.
type GradebookParams struct {
	SkipColumns []string `mapstructure:"skip_columns" help:"extra headers that are not assignments"`
}

// Gradebook reads Canvas gradebook exports. Every column that is not an
// identity column, a Canvas computed total or listed in skip_columns is an
// assignment.
type Gradebook struct {
	skip map[string]bool
}

func init() {
	register(Format{
		Name:        "gradebook",
		Description: "Canvas gradebook export (Student, ID, SIS Login ID, Section, assignments)",
		Params:      GradebookParams{},
		New: func(raw map[string]any) (Handler, error) {
			var p GradebookParams
			if err := params.Decode(raw, &p); err != nil {
				return nil, err
			}
			return NewGradebook(p), nil
		},
	})
}

// NewGradebook returns a gradebook reader for p.
func NewGradebook(p GradebookParams) *Gradebook {
	skip := make(map[string]bool, len(p.SkipColumns))
	for _, c := range p.SkipColumns {
		skip[types.NormalizeKey(c)] = true
	}
	return &Gradebook{skip: skip}
}

// Name implements Handler.
func (h *Gradebook) Name() string { return "gradebook" }

// Parse implements Handler. Several gradebooks are unioned; a score given
// differently by two of them is ErrAmbiguousRecord.
func (h *Gradebook) Parse(sources []types.Source) (*types.Roster, error) {
	tables, err := readTables(sources)
	if err != nil {
		return nil, err
	}
	var b types.RosterBuilder
	for i, t := range tables {
		if err := h.parseTable(&b, t, sources[i].Name); err != nil {
			return nil, types.InSource(err, sources[i].Name)
		}
	}
	return b.Build(), nil
}

func (h *Gradebook) parseTable(b *types.RosterBuilder, t types.Table, source string) error {
	idx, err := columns(t, source, types.GradebookStudent)
	if err != nil {
		return err
	}
	studentCol, loginCol := idx[0], t.Column(types.GradebookSISLogin)

	var assignments []int
	for c, head := range t.Header {
		if h.skip[types.NormalizeKey(head)] || types.IsGradebookFixedColumn(head) {
			continue
		}
		assignments = append(assignments, c)
		b.AddAssignment(strings.TrimSpace(head))
	}

	maxPoints := map[int]*float64{}
	for r := range t.Rows {
		if !types.IsPointsPossibleRow(t.Cell(r, studentCol)) {
			continue
		}
		for _, c := range assignments {
			if f, ok := types.ParseValue(t.Cell(r, c)).Float(); ok {
				maxPoints[c] = &f
				b.SetMaxPoints(strings.TrimSpace(t.Header[c]), f)
			}
		}
	}

	for r := range t.Rows {
		name := strings.TrimSpace(t.Cell(r, studentCol))
		if types.IsPointsPossibleRow(name) {
			continue
		}
		s := types.Student{Name: name}
		if loginCol >= 0 {
			s.Login = strings.TrimSpace(t.Cell(r, loginCol))
		}
		if s.IsZero() {
			continue
		}
		b.AddStudent(s)
		for _, c := range assignments {
			v := types.ParseValue(t.Cell(r, c))
			if err := b.Set(s, strings.TrimSpace(t.Header[c]), v, maxPoints[c]); err != nil {
				return types.AtRow(err, spreadsheetRow(r))
			}
		}
	}
	return nil
}
