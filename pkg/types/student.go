// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package types

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Student identifies one person across documents. Exports disagree on which
// identifiers they carry: PollEverywhere has both, attendance sheets only a
// name, and Canvas rubrics only a display name.
type Student struct {
	// Name is the display name, e.g. "Name One".
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Login is the SIS login id, e.g. "name1".
	Login string `json:"login,omitempty" yaml:"login,omitempty"`
}

var folder = cases.Fold()

// NormalizeKey folds case, applies NFKC and collapses whitespace so that
// identities from different exports compare equal.
func NormalizeKey(s string) string {
	s = norm.NFKC.String(s)
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Key returns the stable comparison key: the normalized login when present,
// otherwise the normalized name.
func (s Student) Key() string {
	if k := NormalizeKey(s.Login); k != "" {
		return "login:" + k
	}
	return "name:" + NormalizeKey(s.Name)
}

// IsZero reports whether neither identifier is set.
func (s Student) IsZero() bool {
	return NormalizeKey(s.Name) == "" && NormalizeKey(s.Login) == ""
}

// Matches reports whether s and o refer to the same person. Logins decide
// when both sides have one; otherwise names are compared.
func (s Student) Matches(o Student) bool {
	sl, ol := NormalizeKey(s.Login), NormalizeKey(o.Login)
	if sl != "" && ol != "" {
		return sl == ol
	}
	sn, on := NormalizeKey(s.Name), NormalizeKey(o.Name)
	return sn != "" && sn == on
}

// Label returns the best human-readable identifier: the name, or the login
// when no name is known.
func (s Student) Label() string {
	if strings.TrimSpace(s.Name) != "" {
		return strings.TrimSpace(s.Name)
	}
	return strings.TrimSpace(s.Login)
}

// String implements fmt.Stringer for error messages and warnings.
func (s Student) String() string {
	name, login := strings.TrimSpace(s.Name), strings.TrimSpace(s.Login)
	switch {
	case name != "" && login != "":
		return name + " (" + login + ")"
	case name != "":
		return name
	default:
		return login
	}
}
