// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package output

import (
	"fmt"
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// RubricParams is empty; the rubric layout comes from the template.
type RubricParams struct{}

// Rubric fills the points cells of a Canvas enhanced rubric export. Each
// roster assignment is a criterion with "<c> - Rating", "<c> - Points" and
// "<c> - Comments" columns; only the points column is written.
type Rubric struct{}

func init() {
	register(Format{
		Name:          "rubric",
		Description:   "Canvas enhanced rubric import (requires the exported rubric as template)",
		NeedsTemplate: true,
		Params:        RubricParams{},
		New: func(raw map[string]any) (Handler, error) {
			var p RubricParams
			if err := params.Decode(raw, &p); err != nil {
				return nil, err
			}
			return Rubric{}, nil
		},
	})
}

// Name implements Handler.
func (Rubric) Name() string { return "rubric" }

// criterion locates one criterion's columns; rating and comments are -1 when
// the template lacks them.
type criterion struct {
	name                    string
	rating, points, comment int
}

// occupied reports whether any of the criterion's cells in row r is filled.
func (c criterion) occupied(t types.Table, r int) bool {
	for _, col := range []int{c.rating, c.points, c.comment} {
		if col >= 0 && strings.TrimSpace(t.Cell(r, col)) != "" {
			return true
		}
	}
	return false
}

// Render implements Handler.
func (h Rubric) Render(roster *types.Roster, existing *types.Document, policy merge.Policy) (*types.Document, []merge.Warning, error) {
	if existing == nil {
		return nil, nil, types.NewError(types.ErrTemplateMissing, "the rubric format needs the exported rubric as a template")
	}
	t := existing.Table.Clone()
	nameCol := t.Column(types.RubricStudentName)
	if nameCol < 0 {
		return nil, nil, types.NewError(types.ErrSchemaMismatch, "rubric template has no %q column", types.RubricStudentName)
	}

	assignments := roster.Assignments()
	crits := make([]criterion, len(assignments))
	for j, a := range assignments {
		c := criterion{
			name:    a,
			rating:  t.Column(a + types.RubricRatingSuffix),
			points:  t.Column(a + types.RubricPointsSuffix),
			comment: t.Column(a + types.RubricCommentsSuffix),
		}
		if c.points < 0 {
			return nil, nil, unmappable(a, fmt.Sprintf("rubric has no %q column", a+types.RubricPointsSuffix))
		}
		crits[j] = c
	}

	// Points cells are numeric; reject text before touching anything.
	for i := 0; i < roster.Len(); i++ {
		for _, e := range roster.Entries(i) {
			if _, ok := e.Value.Float(); !ok {
				return nil, nil, &types.ConversionError{
					Kind:       types.ErrIncompatibleScore,
					Student:    roster.Student(i).String(),
					Assignment: e.Assignment,
					Detail:     fmt.Sprintf("rubric points must be numeric, got %q", e.Value),
				}
			}
		}
	}

	res := merge.NewResolver(policy)
	for i := 0; i < roster.Len(); i++ {
		s := roster.Student(i)
		r, ok := findRow(t, nameCol, s, nil)
		if !ok {
			if len(roster.Entries(i)) == 0 {
				continue
			}
			r = t.AddRow()
			t.SetCell(r, nameCol, s.Label())
		}
		for _, c := range crits {
			out, err := res.Resolve(merge.Cell{
				Student:    s,
				Assignment: c.name,
				Existing:   types.ParseValue(t.Cell(r, c.points)),
				Incoming:   roster.Value(i, c.name),
				Occupied:   c.occupied(t, r),
			})
			if err != nil {
				return nil, nil, types.AtRow(err, r+2)
			}
			if out.Changed {
				t.SetCell(r, c.points, out.Value.String())
			}
		}
	}
	return existing.Derive(h.Name(), t), res.Warnings(), nil
}
