// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package convert runs one conversion: an input handler parses the sources
// into a roster and an output handler renders it, merging onto an existing
// document when one is given. It does no file or console I/O.
package convert

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/input"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/output"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// ErrNoHandler is returned when a request lacks an input or output handler.
var ErrNoHandler = errors.New("convert: input and output handlers are required")

// Request is everything one conversion needs. Sources are read in order.
// Existing is the destination document to merge onto, or nil to render from
// scratch.
type Request struct {
	Input    input.Handler
	Sources  []types.Source
	Output   output.Handler
	Existing *types.Document
	Policy   merge.Policy
}

// Result is the outcome of a successful conversion.
type Result struct {
	// RunID identifies the run in logs and batch reports.
	RunID    string
	Document *types.Document
	Warnings []merge.Warning
	Roster   *types.Roster
}

// Students returns the number of students converted.
func (r *Result) Students() int { return r.Roster.Len() }

// Convert parses the sources and renders the result. The first error from
// either stage is returned wrapped with the stage, so errors.Is still finds
// the types.Err* kind; no document is returned with an error.
func Convert(req Request) (*Result, error) {
	if req.Input == nil || req.Output == nil {
		return nil, ErrNoHandler
	}

	roster, err := req.Input.Parse(req.Sources)
	if err != nil {
		return nil, fmt.Errorf("reading %s input: %w", req.Input.Name(), err)
	}

	doc, warnings, err := req.Output.Render(roster, req.Existing, req.Policy)
	if err != nil {
		return nil, fmt.Errorf("rendering %s output: %w", req.Output.Name(), err)
	}

	return &Result{
		RunID:    uuid.NewString(),
		Document: doc,
		Warnings: warnings,
		Roster:   roster,
	}, nil
}
