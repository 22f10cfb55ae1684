// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package output

import (
	"fmt"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// ACRParams is empty; the format takes no parameters.
type ACRParams struct{}

// ACR writes Auto Canvas Rubric files, the roster transposed: one row per
// criterion under a "criteria" header and one column per student.
type ACR struct{}

func init() {
	register(Format{
		Name:        "acr",
		Description: "Auto Canvas Rubric file (criteria rows, one column per student)",
		Params:      ACRParams{},
		New: func(raw map[string]any) (Handler, error) {
			var p ACRParams
			if err := params.Decode(raw, &p); err != nil {
				return nil, err
			}
			return ACR{}, nil
		},
	})
}

// Name implements Handler.
func (ACR) Name() string { return "acr" }

// Render implements Handler.
func (h ACR) Render(roster *types.Roster, existing *types.Document, policy merge.Policy) (*types.Document, []merge.Warning, error) {
	if existing == nil {
		return h.fresh(roster), nil, nil
	}

	t := existing.Table.Clone()
	if len(t.Header) == 0 || types.NormalizeKey(t.Header[0]) != types.ACRIndexHeader {
		return nil, nil, types.NewError(types.ErrSchemaMismatch, "first header must be %q", types.ACRIndexHeader)
	}

	assignments := roster.Assignments()
	rows := make([]int, len(assignments))
	for j, a := range assignments {
		rows[j] = -1
		for r := range t.Rows {
			if types.NormalizeKey(t.Cell(r, 0)) == types.NormalizeKey(a) {
				rows[j] = r
				break
			}
		}
		if rows[j] < 0 {
			return nil, nil, unmappable(a, fmt.Sprintf("no %q row in the rubric file", a))
		}
	}

	res := merge.NewResolver(policy)
	for i := 0; i < roster.Len(); i++ {
		s := roster.Student(i)
		col := studentColumn(t, s)
		if col < 0 {
			if len(roster.Entries(i)) == 0 {
				continue
			}
			col = t.AddColumn(s.Label())
		}
		for j, a := range assignments {
			out, err := res.Resolve(merge.Cell{
				Student:    s,
				Assignment: a,
				Existing:   types.ParseValue(t.Cell(rows[j], col)),
				Incoming:   roster.Value(i, a),
			})
			if err != nil {
				return nil, nil, types.AtRow(err, rows[j]+2)
			}
			if out.Changed {
				t.SetCell(rows[j], col, out.Value.String())
			}
		}
	}
	return existing.Derive(h.Name(), t), res.Warnings(), nil
}

func (h ACR) fresh(roster *types.Roster) *types.Document {
	t := types.Table{Header: []string{types.ACRIndexHeader}}
	for _, s := range roster.Students() {
		t.AddColumn(s.Label())
	}
	for _, a := range roster.Assignments() {
		r := t.AddRow()
		t.SetCell(r, 0, a)
		for i := 0; i < roster.Len(); i++ {
			t.SetCell(r, i+1, roster.Value(i, a).String())
		}
	}
	return (*types.Document)(nil).Derive(h.Name(), t)
}

func studentColumn(t types.Table, s types.Student) int {
	for c := 1; c < len(t.Header); c++ {
		if matchesLabel(s, t.Header[c]) {
			return c
		}
	}
	return -1
}
