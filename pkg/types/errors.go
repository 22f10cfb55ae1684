// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every conversion failure is a *ConversionError whose Kind is one
// of these, so callers branch with errors.Is.
var (
	// Input phase.
	ErrMalformedInput  = errors.New("malformed input")
	ErrAmbiguousRecord = errors.New("ambiguous record")
	ErrSchemaMismatch  = errors.New("schema mismatch")

	// Output phase.
	ErrTemplateMissing      = errors.New("template missing")
	ErrUnmappableAssignment = errors.New("unmappable assignment")
	ErrIncompatibleScore    = errors.New("incompatible score")
	ErrExistingScore        = errors.New("existing score")
)

// ConversionError carries enough context to tell the user which file, row,
// student and assignment caused a failure.
type ConversionError struct {
	Kind       error
	Source     string
	Row        int // 1-based spreadsheet row; 0 when unknown
	Student    string
	Assignment string
	Detail     string
	Err        error
}

// Error formats the kind followed by whatever context is known.
func (e *ConversionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	var ctx []string
	if e.Source != "" {
		ctx = append(ctx, "source "+quote(e.Source))
	}
	if e.Row > 0 {
		ctx = append(ctx, fmt.Sprintf("row %d", e.Row))
	}
	if e.Student != "" {
		ctx = append(ctx, "student "+quote(e.Student))
	}
	if e.Assignment != "" {
		ctx = append(ctx, "assignment "+quote(e.Assignment))
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the error kind.
func (e *ConversionError) Is(target error) bool { return target == e.Kind }

// Unwrap returns the underlying cause, if any.
func (e *ConversionError) Unwrap() error { return e.Err }

// NewError builds a ConversionError of the given kind with a formatted detail.
func NewError(kind error, format string, args ...any) *ConversionError {
	return &ConversionError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// InSource sets the source name on err when it is a *ConversionError without
// one, and returns err.
func InSource(err error, source string) error {
	var ce *ConversionError
	if errors.As(err, &ce) && ce.Source == "" {
		ce.Source = source
	}
	return err
}

// AtRow sets the row on err when it is a *ConversionError without one.
func AtRow(err error, row int) error {
	var ce *ConversionError
	if errors.As(err, &ce) && ce.Row == 0 {
		ce.Row = row
	}
	return err
}

// IsInputError reports whether err happened while parsing input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrAmbiguousRecord) ||
		errors.Is(err, ErrSchemaMismatch)
}

// IsOutputError reports whether err happened while rendering output.
func IsOutputError(err error) bool {
	return errors.Is(err, ErrTemplateMissing) ||
		errors.Is(err, ErrUnmappableAssignment) ||
		errors.Is(err, ErrIncompatibleScore) ||
		errors.Is(err, ErrExistingScore)
}
