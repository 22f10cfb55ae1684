// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/input"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/output"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/sheet"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// fakeInput implements input.Handler for testing.
type fakeInput struct {
	roster *types.Roster
	err    error
	calls  int
}

func (f *fakeInput) Name() string { return "fake" }

func (f *fakeInput) Parse([]types.Source) (*types.Roster, error) {
	f.calls++
	return f.roster, f.err
}

// fakeOutput implements output.Handler for testing.
type fakeOutput struct {
	err    error
	calls  int
	policy merge.Policy
}

func (f *fakeOutput) Name() string { return "fake" }

func (f *fakeOutput) Render(r *types.Roster, existing *types.Document, p merge.Policy) (*types.Document, []merge.Warning, error) {
	f.calls++
	f.policy = p
	if f.err != nil {
		return nil, nil, f.err
	}
	return existing.Derive("fake", types.Table{Header: []string{"n"}}), []merge.Warning{{Student: "a"}}, nil
}

func emptyRoster() *types.Roster {
	var b types.RosterBuilder
	return b.Build()
}

func TestConvert_Stages(t *testing.T) {
	inputErr := types.NewError(types.ErrMalformedInput, "bad")
	outputErr := types.NewError(types.ErrUnmappableAssignment, "nowhere")

	tests := []struct {
		name        string
		in          *fakeInput
		out         *fakeOutput
		wantErr     error
		wantStage   string
		renderCalls int
	}{
		{"success", &fakeInput{roster: emptyRoster()}, &fakeOutput{}, nil, "", 1},
		{"input fails", &fakeInput{err: inputErr}, &fakeOutput{}, types.ErrMalformedInput, "reading fake input", 0},
		{"output fails", &fakeInput{roster: emptyRoster()}, &fakeOutput{err: outputErr}, types.ErrUnmappableAssignment, "rendering fake output", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := merge.Policy{Mode: merge.ModeOverwrite, Warn: true}
			res, err := Convert(Request{Input: tt.in, Output: tt.out, Policy: policy})

			assert.Equal(t, 1, tt.in.calls)
			assert.Equal(t, tt.renderCalls, tt.out.calls)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, res)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.True(t, strings.HasPrefix(err.Error(), tt.wantStage), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, policy, tt.out.policy)
			assert.Len(t, res.Warnings, 1)
			_, perr := uuid.Parse(res.RunID)
			assert.NoError(t, perr)
		})
	}
}

func TestConvert_NoHandler(t *testing.T) {
	_, err := Convert(Request{Input: &fakeInput{}})
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestConvert_PollEvToGradebook(t *testing.T) {
	day1 := "First name,Last name,Email,Grade\nName,One,name1@charlotte.edu,99\nName,Two,name2@charlotte.edu,0\nAverage grade,,,\nAverage participation,,,\n"
	day2 := "First name,Last name,Email,Grade\nName,One,name1@charlotte.edu,5\nAverage grade,,,\nAverage participation,,,\n"
	template := "Student,ID,SIS Login ID,Section,Attendance (123)\n\"One, Name\",1,name1,A,1\n\"Two, Name\",2,name2,A,\n"

	in, err := input.New("pollev", map[string]any{"points": "2"})
	require.NoError(t, err)
	out, err := output.New("gradebook", map[string]any{"assignment": "Attendance (123)"})
	require.NoError(t, err)
	existing, err := sheet.Decode("gradebook.csv", strings.NewReader(template))
	require.NoError(t, err)

	res, err := Convert(Request{
		Input:    in,
		Sources:  []types.Source{{Name: "day1.csv", Reader: strings.NewReader(day1)}, {Name: "day2.csv", Reader: strings.NewReader(day2)}},
		Output:   out,
		Existing: existing,
		Policy:   merge.Policy{Mode: merge.ModeOverwrite, Warn: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Students())

	var buf bytes.Buffer
	require.NoError(t, sheet.Encode(&buf, res.Document))
	assert.Equal(t, "Student,ID,SIS Login ID,Section,Attendance (123)\n\"One, Name\",1,name1,A,4\n\"Two, Name\",2,name2,A,0\n", buf.String())

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "1", res.Warnings[0].Existing)
	assert.Equal(t, "4", res.Warnings[0].Incoming)
}

func TestConvert_UnmappableProducesNothing(t *testing.T) {
	in, err := input.New("truefalse", map[string]any{"points": 1})
	require.NoError(t, err)
	out, err := output.New("gradebook", nil)
	require.NoError(t, err)
	existing, err := sheet.Decode("gb.csv", strings.NewReader("Student,SIS Login ID,Quiz\nName One,name1,\n"))
	require.NoError(t, err)

	res, err := Convert(Request{
		Input:    in,
		Sources:  []types.Source{{Name: "week.csv", Reader: strings.NewReader("Name,Mon,Tue\nName One,T,F\n")}},
		Output:   out,
		Existing: existing,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnmappableAssignment))
	assert.True(t, types.IsOutputError(err))
	assert.Nil(t, res)
}
