// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

const canvasExport = `Student,ID,SIS User ID,SIS Login ID,Section,Quiz 1 (101),Essay (102),Notes,Assignments Current Score,Final Grade
    Points Possible,,,,,10,20.0,,(read only),(read only)
"One, Name",11,800001,name1,CS 101,8.5,,late,85,B
"Two, Name",12,800002,name2,CS 101,EX,17,,77,C
`

func TestGradebook_Parse(t *testing.T) {
	h := NewGradebook(GradebookParams{SkipColumns: []string{"notes"}})
	r, err := h.Parse([]types.Source{src("export.csv", canvasExport)})
	require.NoError(t, err)

	assert.Equal(t, []string{"Quiz 1 (101)", "Essay (102)"}, r.Assignments())
	require.Equal(t, 2, r.Len())
	assert.Equal(t, types.Student{Name: "One, Name", Login: "name1"}, r.Student(0))

	one := types.Student{Login: "name1"}
	two := types.Student{Login: "name2"}
	assert.Equal(t, "8.5", score(t, r, one, "Quiz 1 (101)"))
	assert.Equal(t, "", score(t, r, one, "Essay (102)"))
	assert.Equal(t, "EX", score(t, r, two, "Quiz 1 (101)"))
	assert.Equal(t, "17", score(t, r, two, "Essay (102)"))

	m, ok := r.MaxPoints("Essay (102)")
	require.True(t, ok)
	assert.Equal(t, 20.0, m)

	e, ok := r.Entry(0, "Quiz 1 (101)")
	require.True(t, ok)
	require.NotNil(t, e.MaxPoints)
	assert.Equal(t, 10.0, *e.MaxPoints)
}

func TestGradebook_NotesWithoutSkipIsAssignment(t *testing.T) {
	r, err := NewGradebook(GradebookParams{}).Parse([]types.Source{src("export.csv", canvasExport)})
	require.NoError(t, err)
	assert.Contains(t, r.Assignments(), "Notes")
	assert.Equal(t, "late", score(t, r, types.Student{Login: "name1"}, "Notes"))
}

func TestGradebook_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want error
	}{
		{"missing student column", "Name,Quiz\nA,1\n", types.ErrSchemaMismatch},
		{"conflicting duplicate", "Student,SIS Login ID,Quiz\nA,a1,1\nA,a1,2\n", types.ErrAmbiguousRecord},
		{"empty file", "", types.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGradebook(GradebookParams{}).Parse([]types.Source{src("gb.csv", tt.csv)})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestGradebook_UnionOfExports(t *testing.T) {
	a := "Student,SIS Login ID,Quiz\nName One,name1,3\n"
	b := "Student,SIS Login ID,Lab\nName One,name1,4\nName Two,name2,5\n"
	r, err := NewGradebook(GradebookParams{}).Parse([]types.Source{src("a.csv", a), src("b.csv", b)})
	require.NoError(t, err)

	assert.Equal(t, []string{"Quiz", "Lab"}, r.Assignments())
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "4", score(t, r, types.Student{Login: "name1"}, "Lab"))
}
