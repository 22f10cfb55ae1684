// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudent_Matches(t *testing.T) {
	tests := []struct {
		name string
		a, b Student
		want bool
	}{
		{"same login", Student{Login: "name1"}, Student{Name: "Other", Login: "NAME1"}, true},
		{"logins decide", Student{Name: "Name One", Login: "name1"}, Student{Name: "Name One", Login: "name2"}, false},
		{"name fallback", Student{Name: "Name  One"}, Student{Name: "name one", Login: "name1"}, true},
		{"fullwidth name", Student{Name: "Ｎａｍｅ One"}, Student{Name: "Name One"}, true},
		{"no identifiers", Student{}, Student{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Matches(tt.b))
			assert.Equal(t, tt.want, tt.b.Matches(tt.a))
		})
	}
}

func TestStudent_Labels(t *testing.T) {
	s := Student{Name: " Name One ", Login: "name1"}
	assert.Equal(t, "Name One", s.Label())
	assert.Equal(t, "Name One (name1)", s.String())
	assert.Equal(t, "login:name1", s.Key())
	assert.Equal(t, "name1", Student{Login: "name1"}.Label())
	assert.Equal(t, "name:name one", Student{Name: "NAME ONE"}.Key())
	assert.True(t, Student{Name: "  "}.IsZero())
}

func TestRosterBuilder_MergesIdentities(t *testing.T) {
	var b RosterBuilder
	require.NoError(t, b.Set(Student{Name: "Name One"}, "quiz", Number(1), nil))
	require.NoError(t, b.Set(Student{Name: "name one", Login: "name1"}, "exam", Number(2), nil))
	require.NoError(t, b.Set(Student{Login: "name1"}, "quiz", Number(1), nil))

	r := b.Build()
	require.Equal(t, 1, r.Len())
	assert.Equal(t, Student{Name: "Name One", Login: "name1"}, r.Student(0))
	assert.Equal(t, []string{"quiz", "exam"}, r.Assignments())
	assert.Len(t, r.Entries(0), 2)
}

func TestRosterBuilder_Set(t *testing.T) {
	var b RosterBuilder
	one := Student{Name: "Name One"}

	require.NoError(t, b.Set(one, "quiz", Absent(), nil))
	require.NoError(t, b.Set(one, "quiz", ParseValue("85.0"), nil))
	require.NoError(t, b.Set(one, "quiz", Number(85), nil))

	err := b.Set(one, "quiz", Number(90), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousRecord))
	assert.Contains(t, err.Error(), `conflicting values "85.0" and "90"`)
}

func TestRosterBuilder_Accumulate(t *testing.T) {
	var b RosterBuilder
	one := Student{Name: "Name One"}

	require.NoError(t, b.Accumulate(one, "attendance", Number(2)))
	require.NoError(t, b.Accumulate(one, "attendance", Number(0)))
	require.NoError(t, b.Accumulate(one, "attendance", Number(2)))
	assert.Equal(t, "4", b.Build().Value(0, "attendance").String())

	err := b.Accumulate(one, "attendance", Text("EX"))
	assert.True(t, errors.Is(err, ErrMalformedInput))
}

func TestRosterBuilder_BuildIsIndependent(t *testing.T) {
	var b RosterBuilder
	require.NoError(t, b.Set(Student{Name: "Name One"}, "quiz", Number(1), nil))
	r := b.Build()
	require.NoError(t, b.Set(Student{Name: "Name Two"}, "exam", Number(1), nil))

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []string{"quiz"}, r.Assignments())
}

func TestRoster_MaxPoints(t *testing.T) {
	ten := 10.0
	var b RosterBuilder
	b.SetMaxPoints("exam", 50)
	require.NoError(t, b.Set(Student{Name: "Name One"}, "quiz", Number(7), &ten))
	require.NoError(t, b.Set(Student{Name: "Name One"}, "notes", Text("late"), nil))
	r := b.Build()

	m, ok := r.MaxPoints("exam")
	assert.True(t, ok)
	assert.Equal(t, 50.0, m)
	m, ok = r.MaxPoints("quiz")
	assert.True(t, ok)
	assert.Equal(t, 10.0, m)
	_, ok = r.MaxPoints("notes")
	assert.False(t, ok)
	assert.Equal(t, []string{"exam", "quiz", "notes"}, r.Assignments())
}

func TestRoster_Equal(t *testing.T) {
	build := func(v string, points float64) *Roster {
		var b RosterBuilder
		b.SetMaxPoints("quiz", points)
		require.NoError(t, b.Set(Student{Name: "Name One"}, "quiz", ParseValue(v), nil))
		return b.Build()
	}
	assert.True(t, build("85", 100).Equal(build("85.0", 100)))
	assert.False(t, build("85", 100).Equal(build("86", 100)))
	assert.False(t, build("85", 100).Equal(build("85", 50)))
}
