// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package merge decides, cell by cell, whether an incoming score replaces a
// score already present in a destination document.
package merge

import (
	"fmt"
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// Mode selects what happens when an incoming score meets a different,
// non-empty existing score.
type Mode string

const (
	// ModeOverwrite replaces the existing score.
	ModeOverwrite Mode = "overwrite"
	// ModePreserve keeps the existing score and discards the incoming one.
	ModePreserve Mode = "preserve"
	// ModeIncrement adds the incoming score to the existing one.
	ModeIncrement Mode = "increment"
	// ModeError fails the conversion.
	ModeError Mode = "error"
)

// Modes lists the recognized modes in display order.
var Modes = []Mode{ModeOverwrite, ModePreserve, ModeIncrement, ModeError}

// ParseMode returns the mode named s (case-insensitive). "replace" is accepted
// as an alias of overwrite.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "replace" {
		return ModeOverwrite, nil
	}
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown merge mode %q (want one of %s)", s, joinModes())
}

func joinModes() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// Policy is the merge configuration threaded from the caller to the output
// handler. The zero Policy preserves existing scores silently.
type Policy struct {
	Mode Mode `json:"mode" yaml:"mode"`
	Warn bool `json:"warn" yaml:"warn"`
}

// FromConfig builds a Policy from the config file settings.
func FromConfig(cfg types.MergeConfig) (Policy, error) {
	mode := ModePreserve
	if cfg.Mode != "" {
		m, err := ParseMode(cfg.Mode)
		if err != nil {
			return Policy{}, err
		}
		mode = m
	}
	return Policy{Mode: mode, Warn: cfg.Warn}, nil
}

func (p Policy) mode() Mode {
	if p.Mode == "" {
		return ModePreserve
	}
	return p.Mode
}

// Cell is one (student, assignment) position present in both the roster and
// the existing document.
type Cell struct {
	Student    types.Student
	Assignment string
	Existing   types.Value
	Incoming   types.Value

	// Occupied marks the existing cell as non-empty even when Existing is
	// absent, e.g. a rubric criterion that has only a comment.
	Occupied bool
}

func (c Cell) occupied() bool { return c.Occupied || !c.Existing.IsAbsent() }

// Outcome is the resolved value of a cell. Changed is false when the
// existing cell should be left exactly as it is.
type Outcome struct {
	Value   types.Value
	Changed bool
	Warning *Warning
}

// Resolve applies the policy to one cell.
//
// An empty existing cell always takes the incoming value without a warning.
// An absent incoming value never touches the cell. Equal values are left
// alone without a warning, except in increment mode, which always adds.
func (p Policy) Resolve(c Cell) (Outcome, error) {
	if c.Incoming.IsAbsent() {
		return Outcome{Value: c.Existing}, nil
	}
	if !c.occupied() {
		return Outcome{Value: c.Incoming, Changed: true}, nil
	}

	mode := p.mode()
	if mode == ModeIncrement {
		sum, ok := c.Existing.Add(c.Incoming)
		if !ok {
			return Outcome{}, &types.ConversionError{
				Kind:       types.ErrIncompatibleScore,
				Student:    c.Student.String(),
				Assignment: c.Assignment,
				Detail:     fmt.Sprintf("cannot add %q to existing %q", c.Incoming, c.Existing),
			}
		}
		return Outcome{Value: sum, Changed: true, Warning: p.warning(c, sum, ActionIncremented)}, nil
	}

	if c.Existing.Equal(c.Incoming) {
		return Outcome{Value: c.Existing}, nil
	}

	switch mode {
	case ModeOverwrite:
		return Outcome{Value: c.Incoming, Changed: true, Warning: p.warning(c, c.Incoming, ActionReplaced)}, nil
	case ModeError:
		return Outcome{}, &types.ConversionError{
			Kind:       types.ErrExistingScore,
			Student:    c.Student.String(),
			Assignment: c.Assignment,
			Detail:     fmt.Sprintf("existing %q, incoming %q", c.Existing, c.Incoming),
		}
	default:
		return Outcome{Value: c.Existing, Warning: p.warning(c, c.Existing, ActionKept)}, nil
	}
}

func (p Policy) warning(c Cell, result types.Value, action Action) *Warning {
	if !p.Warn {
		return nil
	}
	return &Warning{
		Student:    c.Student.String(),
		Assignment: c.Assignment,
		Existing:   c.Existing.String(),
		Incoming:   c.Incoming.String(),
		Result:     result.String(),
		Action:     action,
	}
}

// Resolver applies a Policy to a sequence of cells and collects warnings in
// the order the cells were resolved.
type Resolver struct {
	policy   Policy
	warnings []Warning
}

// NewResolver returns a Resolver for p.
func NewResolver(p Policy) *Resolver {
	return &Resolver{policy: p}
}

// Resolve applies the policy to c and records any warning.
func (r *Resolver) Resolve(c Cell) (Outcome, error) {
	out, err := r.policy.Resolve(c)
	if err != nil {
		return Outcome{}, err
	}
	if out.Warning != nil {
		r.warnings = append(r.warnings, *out.Warning)
	}
	return out, nil
}

// Warnings returns the warnings collected so far.
func (r *Resolver) Warnings() []Warning {
	return append([]Warning(nil), r.warnings...)
}
