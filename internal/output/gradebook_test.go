// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/input"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

const gradebookTemplate = `Student,ID,SIS Login ID,Section,Attendance (123),Quiz
Points Possible,,,,10,5
"One, Name",11,name1,A,85,
"Two, Name",12,name2,A,,3
"Three, Name",13,name3,A,7,1
`

func newGradebook(t *testing.T, p GradebookParams) *Gradebook {
	t.Helper()
	h, err := NewGradebook(p)
	require.NoError(t, err)
	return h
}

func TestGradebook_Conflicts(t *testing.T) {
	roster := rosterOf(t,
		entry{nameOne, "attendance", "90"},
		entry{nameTwo, "attendance", "90"},
	)
	h := newGradebook(t, GradebookParams{Assignment: "Attendance (123)"})

	tests := []struct {
		name     string
		policy   merge.Policy
		wantOne  string
		warnings int
	}{
		{"overwrite", merge.Policy{Mode: merge.ModeOverwrite}, "90", 0},
		{"overwrite warn", merge.Policy{Mode: merge.ModeOverwrite, Warn: true}, "90", 1},
		{"preserve", merge.Policy{Mode: merge.ModePreserve}, "85", 0},
		{"preserve warn", merge.Policy{Mode: merge.ModePreserve, Warn: true}, "85", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, warnings, err := h.Render(roster, document(t, gradebookTemplate), tt.policy)
			require.NoError(t, err)
			assert.Len(t, warnings, tt.warnings)

			want := `Student,ID,SIS Login ID,Section,Attendance (123),Quiz
Points Possible,,,,10,5
"One, Name",11,name1,A,` + tt.wantOne + `,
"Two, Name",12,name2,A,90,3
"Three, Name",13,name3,A,7,1
`
			assert.Equal(t, want, encode(t, doc))
		})
	}
}

func TestGradebook_WarningNamesStudent(t *testing.T) {
	roster := rosterOf(t, entry{nameOne, "Attendance (123)", "90"})
	_, warnings, err := newGradebook(t, GradebookParams{}).Render(roster, document(t, gradebookTemplate),
		merge.Policy{Mode: merge.ModeOverwrite, Warn: true})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "replaced existing grade 85 with 90 (student: Name One (name1), assignment: Attendance (123))", warnings[0].String())
}

func TestGradebook_PreserveIsIdempotent(t *testing.T) {
	roster := rosterOf(t,
		entry{nameOne, "Attendance (123)", "90"},
		entry{nameTwo, "Attendance (123)", "90"},
		entry{types.Student{Name: "Name Four", Login: "name4"}, "Quiz", "2"},
	)
	h := newGradebook(t, GradebookParams{})
	policy := merge.Policy{Mode: merge.ModePreserve, Warn: true}

	first, w1, err := h.Render(roster, document(t, gradebookTemplate), policy)
	require.NoError(t, err)
	second, w2, err := h.Render(roster, first, policy)
	require.NoError(t, err)

	assert.Equal(t, encode(t, first), encode(t, second))
	require.Len(t, w1, 1)
	assert.Equal(t, w1, w2)
}

func TestGradebook_AppendsUnknownStudents(t *testing.T) {
	roster := rosterOf(t,
		entry{types.Student{Name: "Name Four", Login: "name4"}, "Quiz", "5"},
		entry{types.Student{Name: "Name Five", Login: "name5"}, "Quiz", ""},
	)
	doc, _, err := newGradebook(t, GradebookParams{}).Render(roster, document(t, gradebookTemplate), merge.Policy{})
	require.NoError(t, err)

	out := encode(t, doc)
	assert.True(t, strings.HasSuffix(out, "\"Three, Name\",13,name3,A,7,1\nName Four,,name4,,,5\n"), out)
	assert.NotContains(t, out, "Name Five")
}

func TestGradebook_Unmappable(t *testing.T) {
	roster := rosterOf(t, entry{nameOne, "Quiz", "1"}, entry{nameOne, "Quiz 9", "1"})
	doc, warnings, err := newGradebook(t, GradebookParams{}).Render(roster, document(t, gradebookTemplate), merge.Policy{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnmappableAssignment))
	assert.Contains(t, err.Error(), "Quiz 9")
	assert.Nil(t, doc)
	assert.Nil(t, warnings)
}

func TestGradebook_SumIncrement(t *testing.T) {
	tmpl := "Student,ID,SIS Login ID,Section,Assignment 1\nName One (copy 2),,name1,,1\n"
	roster := rosterOf(t,
		entry{types.Student{Name: "Name One (copy 1)", Login: "name1"}, "crit1", "3"},
		entry{types.Student{Name: "Name One (copy 1)", Login: "name1"}, "crit2", "4"},
	)
	h := newGradebook(t, GradebookParams{Assignment: "Assignment 1", Sum: true})

	doc, warnings, err := h.Render(roster, document(t, tmpl), merge.Policy{Mode: merge.ModeIncrement, Warn: true})
	require.NoError(t, err)
	assert.Equal(t, "Student,ID,SIS Login ID,Section,Assignment 1\nName One (copy 2),,name1,,8\n", encode(t, doc))
	require.Len(t, warnings, 1)
	assert.Equal(t, merge.ActionIncremented, warnings[0].Action)
	assert.Equal(t, "8", warnings[0].Result)
}

func TestGradebook_SumRejectsText(t *testing.T) {
	roster := rosterOf(t, entry{nameOne, "crit1", "3"}, entry{nameOne, "crit2", "EX"})
	_, _, err := newGradebook(t, GradebookParams{Assignment: "Total", Sum: true}).Render(roster, nil, merge.Policy{})
	assert.True(t, errors.Is(err, types.ErrIncompatibleScore))
}

func TestGradebook_ErrorMode(t *testing.T) {
	roster := rosterOf(t, entry{nameOne, "Attendance (123)", "90"})
	doc, _, err := newGradebook(t, GradebookParams{}).Render(roster, document(t, gradebookTemplate), merge.Policy{Mode: merge.ModeError})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrExistingScore))
	assert.Nil(t, doc)

	var ce *types.ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.Row)
}

func TestGradebook_Trim(t *testing.T) {
	tmpl := "Student,ID,SIS User ID,SIS Login ID,Section,Notes,Quiz,Final Grade\nName One,1,800,name1,A,x,,B\n"
	roster := rosterOf(t, entry{nameOne, "Quiz", "4"})

	doc, _, err := newGradebook(t, GradebookParams{Trim: true}).Render(roster, document(t, tmpl), merge.Policy{})
	require.NoError(t, err)
	assert.Equal(t, "Student,ID,SIS Login ID,Section,Quiz\nName One,1,name1,A,4\n", encode(t, doc))
	assert.Nil(t, doc.Raw)
}

func TestGradebook_MissingStudentColumn(t *testing.T) {
	roster := rosterOf(t, entry{nameOne, "Quiz", "4"})
	_, _, err := newGradebook(t, GradebookParams{}).Render(roster, document(t, "Name,Quiz\nx,1\n"), merge.Policy{})
	assert.True(t, errors.Is(err, types.ErrSchemaMismatch))
}

func TestGradebook_Fresh(t *testing.T) {
	roster := rosterOf(t, entry{nameOne, "attendance", "2"}, entry{nameTwo, "attendance", "0"})
	doc, warnings, err := newGradebook(t, GradebookParams{Assignment: "Attendance (123)"}).Render(roster, nil, merge.Policy{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, types.EncodingCSV, doc.Encoding)
	assert.Equal(t, "Student,ID,SIS Login ID,Section,Attendance (123)\nName One,,name1,,2\nName Two,,name2,,0\n", encode(t, doc))
}

func TestGradebook_RoundTrip(t *testing.T) {
	export := `Student,ID,SIS User ID,SIS Login ID,Section,Quiz 1 (101),Essay (102),Final Grade
Points Possible,,,,,10,20,(read only)
"One, Name",11,800001,name1,CS 101,8.5,,B
"Two, Name",12,800002,name2,CS 101,EX,17,C
Name Three,13,800003,name3,CS 101,,,
`
	reader := input.NewGradebook(input.GradebookParams{})
	original, err := reader.Parse([]types.Source{{Name: "export.csv", Reader: strings.NewReader(export)}})
	require.NoError(t, err)

	doc, _, err := newGradebook(t, GradebookParams{}).Render(original, nil, merge.Policy{})
	require.NoError(t, err)

	again, err := reader.Parse([]types.Source{{Name: "out.csv", Reader: bytes.NewBufferString(encode(t, doc))}})
	require.NoError(t, err)

	assert.True(t, original.Equal(again), encode(t, doc))
}
