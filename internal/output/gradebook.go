// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package output

import (
	"fmt"
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// GradebookParams configures the Canvas gradebook writer.
type GradebookParams struct {
	Assignment string `mapstructure:"assignment" help:"gradebook column to write; required with sum"`
	Sum        bool   `mapstructure:"sum" help:"sum every roster assignment per student into the assignment column"`
	Trim       bool   `mapstructure:"trim" help:"keep only Student, ID, SIS Login ID, Section and written columns"`
}

// Gradebook writes Canvas gradebook import files.
type Gradebook struct {
	params GradebookParams
}

func init() {
	register(Format{
		Name:        "gradebook",
		Description: "Canvas gradebook import (CSV or XLSX)",
		Params:      GradebookParams{},
		New: func(raw map[string]any) (Handler, error) {
			var p GradebookParams
			if err := params.Decode(raw, &p); err != nil {
				return nil, err
			}
			return NewGradebook(p)
		},
	})
}

// NewGradebook returns a gradebook writer for p.
func NewGradebook(p GradebookParams) (*Gradebook, error) {
	p.Assignment = strings.TrimSpace(p.Assignment)
	if p.Sum && p.Assignment == "" {
		return nil, fmt.Errorf("%w: sum needs an assignment column", params.ErrInvalid)
	}
	return &Gradebook{params: p}, nil
}

// Name implements Handler.
func (h *Gradebook) Name() string { return "gradebook" }

// columnSet is what the roster contributes to a gradebook: one header per
// written column, each student's value for it, and points possible when
// known.
type columnSet struct {
	headers []string
	values  [][]types.Value // [student][column]
	max     []*float64
}

func (h *Gradebook) columns(roster *types.Roster) (columnSet, error) {
	assignments := roster.Assignments()
	var cs columnSet

	if h.params.Sum {
		cs.headers = []string{h.params.Assignment}
		cs.max = []*float64{sumMaxPoints(roster, assignments)}
		cs.values = make([][]types.Value, roster.Len())
		for i := range cs.values {
			total := types.Absent()
			for _, e := range roster.Entries(i) {
				sum, ok := total.Add(e.Value)
				if !ok {
					return cs, &types.ConversionError{
						Kind:       types.ErrIncompatibleScore,
						Student:    roster.Student(i).String(),
						Assignment: e.Assignment,
						Detail:     fmt.Sprintf("cannot sum non-numeric value %q", e.Value),
					}
				}
				total = sum
			}
			cs.values[i] = []types.Value{total}
		}
		return cs, nil
	}

	cs.headers = assignments
	if len(assignments) == 1 && h.params.Assignment != "" {
		cs.headers = []string{h.params.Assignment}
	}
	for _, a := range assignments {
		var points *float64
		if m, ok := roster.MaxPoints(a); ok {
			points = &m
		}
		cs.max = append(cs.max, points)
	}
	cs.values = make([][]types.Value, roster.Len())
	for i := range cs.values {
		row := make([]types.Value, len(assignments))
		for j, a := range assignments {
			row[j] = roster.Value(i, a)
		}
		cs.values[i] = row
	}
	return cs, nil
}

// sumMaxPoints totals points possible when every assignment has it.
func sumMaxPoints(roster *types.Roster, assignments []string) *float64 {
	if len(assignments) == 0 {
		return nil
	}
	var total float64
	for _, a := range assignments {
		m, ok := roster.MaxPoints(a)
		if !ok {
			return nil
		}
		total += m
	}
	return &total
}

// Render implements Handler.
func (h *Gradebook) Render(roster *types.Roster, existing *types.Document, policy merge.Policy) (*types.Document, []merge.Warning, error) {
	cs, err := h.columns(roster)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return h.fresh(roster, cs), nil, nil
	}

	t := existing.Table.Clone()
	studentCol := t.Column(types.GradebookStudent)
	if studentCol < 0 {
		return nil, nil, types.NewError(types.ErrSchemaMismatch, "gradebook template has no %q column", types.GradebookStudent)
	}
	loginCol := t.Column(types.GradebookSISLogin)

	cols := make([]int, len(cs.headers))
	for j, head := range cs.headers {
		cols[j] = t.Column(head)
		if cols[j] < 0 {
			return nil, nil, unmappable(head, "no such column in the gradebook")
		}
	}

	res := merge.NewResolver(policy)
	for i := 0; i < roster.Len(); i++ {
		s := roster.Student(i)
		r, ok := gradebookRow(t, studentCol, loginCol, s)
		if !ok {
			if !anyPresent(cs.values[i]) {
				continue
			}
			r = t.AddRow()
			t.SetCell(r, studentCol, s.Label())
			if loginCol >= 0 {
				t.SetCell(r, loginCol, s.Login)
			}
		}
		for j, v := range cs.values[i] {
			out, err := res.Resolve(merge.Cell{
				Student:    s,
				Assignment: cs.headers[j],
				Existing:   types.ParseValue(t.Cell(r, cols[j])),
				Incoming:   v,
			})
			if err != nil {
				return nil, nil, types.AtRow(err, r+2)
			}
			if out.Changed {
				t.SetCell(r, cols[j], out.Value.String())
			}
		}
	}

	doc := existing.Derive(h.Name(), t)
	if h.params.Trim {
		doc.Table = trimGradebook(t, cs.headers)
		// Columns moved, so cell-level rewriting of the original workbook
		// no longer lines up.
		doc.Raw = nil
	}
	return doc, res.Warnings(), nil
}

func (h *Gradebook) fresh(roster *types.Roster, cs columnSet) *types.Document {
	header := append(append([]string(nil), types.GradebookIdentityColumns...), cs.headers...)
	t := types.Table{Header: header}
	first := len(types.GradebookIdentityColumns)

	hasMax := false
	for _, m := range cs.max {
		hasMax = hasMax || m != nil
	}
	if hasMax {
		r := t.AddRow()
		t.SetCell(r, 0, types.GradebookPointsPossible)
		for j, m := range cs.max {
			if m != nil {
				t.SetCell(r, first+j, types.FormatNumber(*m))
			}
		}
	}

	for i := 0; i < roster.Len(); i++ {
		s := roster.Student(i)
		r := t.AddRow()
		t.SetCell(r, 0, s.Name)
		t.SetCell(r, 2, s.Login)
		for j, v := range cs.values[i] {
			t.SetCell(r, first+j, v.String())
		}
	}
	return (*types.Document)(nil).Derive(h.Name(), t)
}

// gradebookRow finds the student's row, matching by SIS login when both
// sides have one and by the Student column otherwise.
func gradebookRow(t types.Table, studentCol, loginCol int, s types.Student) (int, bool) {
	for r := range t.Rows {
		name := t.Cell(r, studentCol)
		if types.IsPointsPossibleRow(name) {
			continue
		}
		doc := types.Student{Name: name}
		if loginCol >= 0 {
			doc.Login = t.Cell(r, loginCol)
		}
		if doc.IsZero() {
			continue
		}
		if types.NormalizeKey(s.Login) != "" && types.NormalizeKey(doc.Login) != "" {
			if s.Matches(doc) {
				return r, true
			}
			continue
		}
		if matchesLabel(s, name) {
			return r, true
		}
	}
	return -1, false
}

func anyPresent(vs []types.Value) bool {
	for _, v := range vs {
		if !v.IsAbsent() {
			return true
		}
	}
	return false
}

// trimGradebook keeps the identity columns Canvas needs to match students
// plus the written columns, in template order.
func trimGradebook(t types.Table, written []string) types.Table {
	keep := map[string]bool{}
	for _, h := range types.GradebookIdentityColumns {
		keep[types.NormalizeKey(h)] = true
	}
	for _, h := range written {
		keep[types.NormalizeKey(h)] = true
	}

	var cols []int
	for c, h := range t.Header {
		if keep[types.NormalizeKey(h)] {
			cols = append(cols, c)
		}
	}

	out := types.Table{Header: make([]string, len(cols))}
	for j, c := range cols {
		out.Header[j] = t.Header[c]
	}
	for r := range t.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = t.Cell(r, c)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
