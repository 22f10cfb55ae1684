// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package merge

import "fmt"

// Action is what the policy did to a conflicting cell.
type Action string

const (
	ActionReplaced    Action = "replaced"
	ActionKept        Action = "kept"
	ActionIncremented Action = "incremented"
)

// Warning describes a non-empty existing cell that was overwritten, kept over
// a different incoming value, or incremented. The core returns warnings; it
// never prints them.
type Warning struct {
	Student    string `json:"student" yaml:"student"`
	Assignment string `json:"assignment" yaml:"assignment"`
	Existing   string `json:"existing" yaml:"existing"`
	Incoming   string `json:"incoming" yaml:"incoming"`
	Result     string `json:"result" yaml:"result"`
	Action     Action `json:"action" yaml:"action"`
}

// String renders the warning as a single line.
func (w Warning) String() string {
	switch w.Action {
	case ActionReplaced:
		return fmt.Sprintf("replaced existing grade %s with %s (student: %s, assignment: %s)",
			w.Existing, w.Incoming, w.Student, w.Assignment)
	case ActionIncremented:
		return fmt.Sprintf("incremented existing grade %s by %s to %s (student: %s, assignment: %s)",
			w.Existing, w.Incoming, w.Result, w.Student, w.Assignment)
	default:
		existing := w.Existing
		if existing == "" {
			existing = `""`
		}
		return fmt.Sprintf("kept existing grade %s over %s (student: %s, assignment: %s)",
			existing, w.Incoming, w.Student, w.Assignment)
	}
}
