// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package input

import (
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// ACRParams is empty; the format takes no parameters.
type ACRParams struct{}

// ACR reads Auto Canvas Rubric files: a "criteria" column of assignment ids
// followed by one column per student name.
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

// Parse implements Handler.
func (ACR) Parse(sources []types.Source) (*types.Roster, error) {
	tables, err := readTables(sources)
	if err != nil {
		return nil, err
	}
	var b types.RosterBuilder
	for i, t := range tables {
		if err := parseACR(&b, t); err != nil {
			return nil, types.InSource(err, sources[i].Name)
		}
	}
	return b.Build(), nil
}

func parseACR(b *types.RosterBuilder, t types.Table) error {
	if len(t.Header) == 0 || types.NormalizeKey(t.Header[0]) != types.ACRIndexHeader {
		return types.NewError(types.ErrSchemaMismatch, "first header must be %q", types.ACRIndexHeader)
	}

	students := make([]types.Student, len(t.Header))
	for c := 1; c < len(t.Header); c++ {
		students[c] = types.Student{Name: strings.TrimSpace(t.Header[c])}
		if !students[c].IsZero() {
			b.AddStudent(students[c])
		}
	}

	for r := range t.Rows {
		criterion := strings.TrimSpace(t.Cell(r, 0))
		if criterion == "" {
			continue
		}
		b.AddAssignment(criterion)
		for c := 1; c < len(t.Header); c++ {
			if students[c].IsZero() {
				continue
			}
			if err := b.Set(students[c], criterion, types.ParseValue(t.Cell(r, c)), nil); err != nil {
				return types.AtRow(err, spreadsheetRow(r))
			}
		}
	}
	return nil
}
