// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package types

import "strings"

// Canvas gradebook layout.
const (
	GradebookStudent        = "Student"
	GradebookID             = "ID"
	GradebookSISUserID      = "SIS User ID"
	GradebookSISLogin       = "SIS Login ID"
	GradebookIntegrationID  = "Integration ID"
	GradebookSection        = "Section"
	GradebookPointsPossible = "Points Possible"
)

// GradebookIdentityColumns are the leading columns of a fresh gradebook.
var GradebookIdentityColumns = []string{GradebookStudent, GradebookID, GradebookSISLogin, GradebookSection}

var gradebookFixed = map[string]bool{
	NormalizeKey(GradebookStudent):       true,
	NormalizeKey(GradebookID):            true,
	NormalizeKey(GradebookSISUserID):     true,
	NormalizeKey(GradebookSISLogin):      true,
	NormalizeKey(GradebookIntegrationID): true,
	NormalizeKey(GradebookSection):       true,
}

// Canvas appends read-only totals such as "Assignments Current Score" and
// "Final Grade" after the assignments.
var gradebookComputed = []string{
	"current score", "unposted current score", "final score", "unposted final score",
	"current grade", "unposted current grade", "final grade", "unposted final grade",
	"current points", "unposted current points", "final points", "unposted final points",
}

// IsGradebookFixedColumn reports whether header is an identity column or a
// computed total rather than an assignment.
func IsGradebookFixedColumn(header string) bool {
	h := NormalizeKey(header)
	if h == "" || gradebookFixed[h] {
		return true
	}
	for _, suffix := range gradebookComputed {
		if h == suffix || strings.HasSuffix(h, " "+suffix) {
			return true
		}
	}
	return false
}

// IsPointsPossibleRow reports whether a gradebook row with the given Student
// cell holds points possible rather than a student.
func IsPointsPossibleRow(student string) bool {
	return NormalizeKey(student) == NormalizeKey(GradebookPointsPossible)
}

// ACRIndexHeader is the first header cell of an Auto Canvas Rubric file.
const ACRIndexHeader = "criteria"

// Canvas enhanced rubric layout.
const (
	RubricStudentName    = "Student Name"
	RubricRatingSuffix   = " - Rating"
	RubricPointsSuffix   = " - Points"
	RubricCommentsSuffix = " - Comments"
)
