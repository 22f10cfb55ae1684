// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

func TestACR_Parse(t *testing.T) {
	csv := "criteria,Name One,Name Two\ncrit1,3,\ncrit2,4,2.5\n,9,9\n"
	r, err := ACR{}.Parse([]types.Source{src("rubric.csv", csv)})
	require.NoError(t, err)

	assert.Equal(t, []string{"crit1", "crit2"}, r.Assignments())
	assert.Equal(t, []types.Student{{Name: "Name One"}, {Name: "Name Two"}}, r.Students())
	assert.Equal(t, "3", score(t, r, types.Student{Name: "Name One"}, "crit1"))
	assert.Equal(t, "", score(t, r, types.Student{Name: "Name Two"}, "crit1"))
	assert.Equal(t, "2.5", score(t, r, types.Student{Name: "Name Two"}, "crit2"))
}

func TestACR_Errors(t *testing.T) {
	_, err := ACR{}.Parse([]types.Source{src("x.csv", "Student,Name One\ncrit1,3\n")})
	assert.True(t, errors.Is(err, types.ErrSchemaMismatch))

	_, err = ACR{}.Parse([]types.Source{src("x.csv", "criteria,Name One,name one\ncrit1,3,4\n")})
	assert.True(t, errors.Is(err, types.ErrAmbiguousRecord))
}
