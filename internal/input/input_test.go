// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package input

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

func src(name, content string) types.Source {
	return types.Source{Name: name, Reader: strings.NewReader(content)}
}

// score returns the text of a student's score, "" when absent.
func score(t *testing.T, r *types.Roster, s types.Student, assignment string) string {
	t.Helper()
	i, ok := r.Lookup(s)
	require.True(t, ok, "student %s not in roster", s)
	return r.Value(i, assignment).String()
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"acr", "gradebook", "pollev", "truefalse"}, Names())

	f, ok := Lookup(" PollEv ")
	require.True(t, ok)
	assert.Equal(t, "pollev", f.Name)

	_, err := New("moodle", nil)
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	_, err = New("pollev", nil)
	assert.True(t, errors.Is(err, params.ErrInvalid))

	_, err = New("acr", map[string]any{"points": 1})
	assert.True(t, errors.Is(err, params.ErrInvalid))

	h, err := New("pollev", map[string]any{"points": "2"})
	require.NoError(t, err)
	assert.Equal(t, "pollev", h.Name())
}

func TestParse_NoSources(t *testing.T) {
	h, err := NewPollEv(PollEvParams{Points: 1, Assignment: "attendance"})
	require.NoError(t, err)
	_, err = h.Parse(nil)
	assert.True(t, errors.Is(err, types.ErrMalformedInput))
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "day1", sourceLabel("/tmp/polls/day1.csv"))
	assert.Equal(t, "day1", sourceLabel("day1"))

	labels := uniqueLabels([]types.Source{{Name: "a/day.csv"}, {Name: "b/day.csv"}, {Name: "c.csv"}})
	assert.Equal(t, []string{"day", "day (2)", "c"}, labels)
}
