// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Points  float64  `mapstructure:"points" validate:"required,gt=0" help:"points per day"`
	Label   string   `mapstructure:"assignment" default:"attendance" help:"assignment id"`
	Split   bool     `mapstructure:"per_source"`
	Domain  string   `mapstructure:"email_domain" default:"example.edu" validate:"omitempty,hostname"`
	Columns []string `mapstructure:"skip_columns"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    sample
		wantErr string
	}{
		{
			name: "strings are converted",
			raw:  map[string]any{"points": "2", "per_source": "true"},
			want: sample{Points: 2, Label: "attendance", Split: true, Domain: "example.edu"},
		},
		{
			name: "typed values from yaml",
			raw:  map[string]any{"points": 1.5, "assignment": "Lab", "skip_columns": []any{"Notes", "Team"}},
			want: sample{Points: 1.5, Label: "Lab", Domain: "example.edu", Columns: []string{"Notes", "Team"}},
		},
		{
			name: "comma list",
			raw:  map[string]any{"points": 1, "skip_columns": "Notes,Team"},
			want: sample{Points: 1, Label: "attendance", Domain: "example.edu", Columns: []string{"Notes", "Team"}},
		},
		{
			name: "empty overrides default",
			raw:  map[string]any{"points": 1, "email_domain": ""},
			want: sample{Points: 1, Label: "attendance"},
		},
		{
			name: "keys are case-insensitive",
			raw:  map[string]any{"Points": "3"},
			want: sample{Points: 3, Label: "attendance", Domain: "example.edu"},
		},
		{name: "missing required", raw: map[string]any{}, wantErr: "points is required"},
		{name: "not positive", raw: map[string]any{"points": "-1"}, wantErr: "points must be greater than 0"},
		{name: "unknown key", raw: map[string]any{"points": 1, "colour": "red"}, wantErr: "colour"},
		{name: "wrong type", raw: map[string]any{"points": "lots"}, wantErr: "points"},
		{name: "bad domain", raw: map[string]any{"points": 1, "email_domain": "not a host"}, wantErr: "email_domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			err := Decode(tt.raw, &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalid))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribe(t *testing.T) {
	fields := Describe(sample{})
	require.Len(t, fields, 5)

	assert.Equal(t, Field{Name: "points", Type: "number", Required: true, Rules: "required,gt=0", Help: "points per day"}, fields[0])
	assert.Equal(t, "attendance", fields[1].Default)
	assert.Equal(t, "bool", fields[2].Type)
	assert.False(t, fields[3].Required)
	assert.Equal(t, "list of string", fields[4].Type)

	assert.Equal(t, fields, Describe(&sample{}))
	assert.Nil(t, Describe(42))
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"points=2", "sum", "assignment=Attendance (123) = day"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"points":     "2",
		"sum":        "true",
		"assignment": "Attendance (123) = day",
	}, got)

	_, err = ParseAssignments([]string{"=x"})
	assert.True(t, errors.Is(err, ErrInvalid))
}
