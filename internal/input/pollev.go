// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package input

import (
	"fmt"
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// PollEv column headers.
const (
	pollEvFirst = "First name"
	pollEvLast  = "Last name"
	pollEvEmail = "Email"
	pollEvGrade = "Grade"
)

// PollEvParams configures the PollEverywhere attendance reader.
type PollEvParams struct {
	Points      float64 `mapstructure:"points" validate:"required,gt=0" help:"points awarded per day attended"`
	Assignment  string  `mapstructure:"assignment" default:"attendance" help:"assignment id of the summed total"`
	PerSource   bool    `mapstructure:"per_source" help:"one assignment per file, named after the file, instead of a total"`
	EmailDomain string  `mapstructure:"email_domain" default:"charlotte.edu" validate:"omitempty,hostname" help:"required email domain; empty accepts any"`
}

// PollEv reads PollEverywhere participation exports, one file per class day.
// A student attended a day when their grade is a number above zero.
type PollEv struct {
	params PollEvParams
}

func init() {
	register(Format{
		Name:        "pollev",
		Description: "PollEverywhere participation export (one file per day)",
		Params:      PollEvParams{},
		New: func(raw map[string]any) (Handler, error) {
			var p PollEvParams
			if err := params.Decode(raw, &p); err != nil {
				return nil, err
			}
			return NewPollEv(p)
		},
	})
}

// NewPollEv returns a PollEv reader for p.
func NewPollEv(p PollEvParams) (*PollEv, error) {
	if p.Points <= 0 {
		return nil, fmt.Errorf("%w: points must be greater than 0", params.ErrInvalid)
	}
	if !p.PerSource && strings.TrimSpace(p.Assignment) == "" {
		return nil, fmt.Errorf("%w: assignment is required unless per_source is set", params.ErrInvalid)
	}
	return &PollEv{params: p}, nil
}

// Name implements Handler.
func (h *PollEv) Name() string { return "pollev" }

// Parse implements Handler. Without per_source, every student found in any
// file gets points times the number of days attended. With per_source, each
// file becomes its own assignment and a student missing from a file has no
// score for it.
func (h *PollEv) Parse(sources []types.Source) (*types.Roster, error) {
	tables, err := readTables(sources)
	if err != nil {
		return nil, err
	}

	var b types.RosterBuilder
	if !h.params.PerSource {
		b.AddAssignment(h.params.Assignment)
	}
	labels := uniqueLabels(sources)

	for i, t := range tables {
		name := sources[i].Name
		if h.params.PerSource {
			b.AddAssignment(labels[i])
		}
		if err := h.parseDay(&b, t, name, labels[i]); err != nil {
			return nil, types.InSource(err, name)
		}
	}
	return b.Build(), nil
}

func (h *PollEv) parseDay(b *types.RosterBuilder, t types.Table, source, label string) error {
	idx, err := columns(t, source, pollEvFirst, pollEvLast, pollEvEmail, pollEvGrade)
	if err != nil {
		return err
	}
	seen := newAttendance(source)

	for r := range t.Rows {
		if t.IsBlankRow(r) || isSummaryRow(t.Cell(r, 0)) {
			continue
		}
		fullName := strings.TrimSpace(strings.TrimSpace(t.Cell(r, idx[0])) + " " + strings.TrimSpace(t.Cell(r, idx[1])))
		email := strings.TrimSpace(t.Cell(r, idx[2]))
		if fullName == "" || email == "" {
			continue
		}

		login, err := h.login(email)
		if err != nil {
			return types.AtRow(err, spreadsheetRow(r))
		}
		s := types.Student{Name: fullName, Login: login}

		attended := gradeAttended(t.Cell(r, idx[3]))
		first, err := seen.mark(s, attended, r)
		if err != nil {
			return err
		}
		if !first {
			continue
		}

		pts := types.Number(0)
		if attended {
			pts = types.Number(h.params.Points)
		}
		if h.params.PerSource {
			err = b.Set(s, label, pts, nil)
		} else {
			err = b.Accumulate(s, h.params.Assignment, pts)
		}
		if err != nil {
			return types.AtRow(err, spreadsheetRow(r))
		}
	}
	return nil
}

// login returns the local part of email after checking its domain.
func (h *PollEv) login(email string) (string, error) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", types.NewError(types.ErrMalformedInput, "invalid email %q", email)
	}
	local, domain := email[:at], email[at+1:]
	if d := h.params.EmailDomain; d != "" && !strings.EqualFold(domain, d) {
		return "", types.NewError(types.ErrMalformedInput, "email %q is not in domain %s", email, d)
	}
	return local, nil
}

// isSummaryRow reports whether a row is one of the "Average ..." rows
// PollEverywhere appends after the students.
func isSummaryRow(first string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(first)), "average")
}

// gradeAttended reports whether a PollEv grade cell counts as attendance.
// Non-numeric grades do not.
func gradeAttended(cell string) bool {
	f, ok := types.ParseValue(cell).Float()
	return ok && f > 0
}
