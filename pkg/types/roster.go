// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package types

// ScoreEntry is one student's score for one assignment.
type ScoreEntry struct {
	Student    Student `json:"student" yaml:"student"`
	Assignment string  `json:"assignment" yaml:"assignment"`
	Value      Value   `json:"-" yaml:"-"`

	// MaxPoints is the points possible for the assignment, when the source
	// format carries it.
	MaxPoints *float64 `json:"max_points,omitempty" yaml:"max_points,omitempty"`
}

// Roster is the format-agnostic set of students and their scores. A Roster is
// read-only; build one with RosterBuilder.
type Roster struct {
	students    []Student
	assignments []string
	scores      []map[string]ScoreEntry
	maxPoints   map[string]float64
}

// Len returns the number of students.
func (r *Roster) Len() int { return len(r.students) }

// Students returns the students in insertion order.
func (r *Roster) Students() []Student {
	out := make([]Student, len(r.students))
	copy(out, r.students)
	return out
}

// Assignments returns the assignment ids in the order they were first seen.
func (r *Roster) Assignments() []string {
	out := make([]string, len(r.assignments))
	copy(out, r.assignments)
	return out
}

// Student returns the student at position i.
func (r *Roster) Student(i int) Student { return r.students[i] }

// Lookup returns the position of the student matching s.
func (r *Roster) Lookup(s Student) (int, bool) {
	for i, st := range r.students {
		if st.Matches(s) {
			return i, true
		}
	}
	return -1, false
}

// Entry returns the entry for the student at position i and assignment a.
func (r *Roster) Entry(i int, a string) (ScoreEntry, bool) {
	e, ok := r.scores[i][a]
	return e, ok
}

// Value returns the score for student position i and assignment a, or an
// absent value when there is none.
func (r *Roster) Value(i int, a string) Value {
	return r.scores[i][a].Value
}

// Entries returns the entries of the student at position i, ordered by
// assignment.
func (r *Roster) Entries(i int) []ScoreEntry {
	var out []ScoreEntry
	for _, a := range r.assignments {
		if e, ok := r.scores[i][a]; ok {
			out = append(out, e)
		}
	}
	return out
}

// MaxPoints returns the points possible for assignment a: the value set for
// the assignment itself, else the first one recorded on an entry.
func (r *Roster) MaxPoints(a string) (float64, bool) {
	if m, ok := r.maxPoints[a]; ok {
		return m, true
	}
	for i := range r.students {
		if e, ok := r.scores[i][a]; ok && e.MaxPoints != nil {
			return *e.MaxPoints, true
		}
	}
	return 0, false
}

// Equal reports whether two rosters hold the same students in the same order,
// the same assignments in the same order, and equal scores.
func (r *Roster) Equal(o *Roster) bool {
	if r.Len() != o.Len() || len(r.assignments) != len(o.assignments) {
		return false
	}
	for i, a := range r.assignments {
		if o.assignments[i] != a {
			return false
		}
	}
	for _, a := range r.assignments {
		rm, rok := r.MaxPoints(a)
		om, ook := o.MaxPoints(a)
		if rok != ook || rm != om {
			return false
		}
	}
	for i, s := range r.students {
		if NormalizeKey(s.Name) != NormalizeKey(o.students[i].Name) ||
			NormalizeKey(s.Login) != NormalizeKey(o.students[i].Login) {
			return false
		}
		if len(r.scores[i]) != len(o.scores[i]) {
			return false
		}
		for a, e := range r.scores[i] {
			oe, ok := o.scores[i][a]
			if !ok || !e.Value.Equal(oe.Value) || !equalMax(e.MaxPoints, oe.MaxPoints) {
				return false
			}
		}
	}
	return true
}

func equalMax(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// RosterBuilder accumulates students and scores. The zero value is ready to
// use. Build hands out an independent Roster; later builder calls do not
// affect it.
type RosterBuilder struct {
	r       Roster
	byLogin map[string]int
	byName  map[string]int
	known   map[string]bool
}

// AddStudent registers s and returns its position. A student matching an
// existing one is merged: identifiers missing on the existing record are
// filled from s.
func (b *RosterBuilder) AddStudent(s Student) int {
	if i, ok := b.find(s); ok {
		cur := &b.r.students[i]
		if NormalizeKey(cur.Name) == "" && NormalizeKey(s.Name) != "" {
			cur.Name = s.Name
			b.index(i, *cur)
		}
		if NormalizeKey(cur.Login) == "" && NormalizeKey(s.Login) != "" {
			cur.Login = s.Login
			b.index(i, *cur)
		}
		return i
	}
	i := len(b.r.students)
	b.r.students = append(b.r.students, s)
	b.r.scores = append(b.r.scores, map[string]ScoreEntry{})
	b.index(i, s)
	return i
}

func (b *RosterBuilder) find(s Student) (int, bool) {
	if l := NormalizeKey(s.Login); l != "" {
		if i, ok := b.byLogin[l]; ok {
			return i, true
		}
	}
	if n := NormalizeKey(s.Name); n != "" {
		if i, ok := b.byName[n]; ok && b.r.students[i].Matches(s) {
			return i, true
		}
	}
	return -1, false
}

func (b *RosterBuilder) index(i int, s Student) {
	if b.byLogin == nil {
		b.byLogin = map[string]int{}
		b.byName = map[string]int{}
	}
	if l := NormalizeKey(s.Login); l != "" {
		if _, ok := b.byLogin[l]; !ok {
			b.byLogin[l] = i
		}
	}
	if n := NormalizeKey(s.Name); n != "" {
		if _, ok := b.byName[n]; !ok {
			b.byName[n] = i
		}
	}
}

// AddAssignment registers an assignment id so it survives even when no
// student has a score for it.
func (b *RosterBuilder) AddAssignment(a string) {
	if b.known == nil {
		b.known = map[string]bool{}
	}
	if b.known[a] {
		return
	}
	b.known[a] = true
	b.r.assignments = append(b.r.assignments, a)
}

// SetMaxPoints records the points possible for assignment a, registering the
// assignment.
func (b *RosterBuilder) SetMaxPoints(a string, points float64) {
	b.AddAssignment(a)
	if b.r.maxPoints == nil {
		b.r.maxPoints = map[string]float64{}
	}
	b.r.maxPoints[a] = points
}

// Set records the score of s for assignment a. Setting an absent value only
// registers the student and assignment. Setting a different value for a pair
// that already has one fails with ErrAmbiguousRecord; repeating an equal value
// is a no-op.
func (b *RosterBuilder) Set(s Student, a string, v Value, maxPoints *float64) error {
	i := b.AddStudent(s)
	b.AddAssignment(a)
	if v.IsAbsent() {
		return nil
	}
	if cur, ok := b.r.scores[i][a]; ok {
		if cur.Value.Equal(v) {
			return nil
		}
		return &ConversionError{
			Kind:       ErrAmbiguousRecord,
			Student:    b.r.students[i].String(),
			Assignment: a,
			Detail:     "conflicting values " + quote(cur.Value.String()) + " and " + quote(v.String()),
		}
	}
	b.r.scores[i][a] = ScoreEntry{Student: b.r.students[i], Assignment: a, Value: v, MaxPoints: maxPoints}
	return nil
}

// Accumulate adds v to the current score of s for assignment a. Summation is
// commutative, so the result does not depend on the order sources are read.
// Text values cannot be accumulated and fail with ErrMalformedInput.
func (b *RosterBuilder) Accumulate(s Student, a string, v Value) error {
	i := b.AddStudent(s)
	b.AddAssignment(a)
	cur := b.r.scores[i][a]
	sum, ok := cur.Value.Add(v)
	if !ok {
		return &ConversionError{
			Kind:       ErrMalformedInput,
			Student:    b.r.students[i].String(),
			Assignment: a,
			Detail:     "cannot sum non-numeric value " + quote(v.String()),
		}
	}
	if sum.IsAbsent() {
		return nil
	}
	cur.Student, cur.Assignment, cur.Value = b.r.students[i], a, sum
	b.r.scores[i][a] = cur
	return nil
}

// Build returns the roster built so far.
func (b *RosterBuilder) Build() *Roster {
	out := &Roster{
		students:    make([]Student, len(b.r.students)),
		assignments: make([]string, len(b.r.assignments)),
		scores:      make([]map[string]ScoreEntry, len(b.r.scores)),
	}
	copy(out.students, b.r.students)
	copy(out.assignments, b.r.assignments)
	if len(b.r.maxPoints) > 0 {
		out.maxPoints = make(map[string]float64, len(b.r.maxPoints))
		for a, m := range b.r.maxPoints {
			out.maxPoints[a] = m
		}
	}
	for i, m := range b.r.scores {
		cp := make(map[string]ScoreEntry, len(m))
		for a, e := range m {
			e.Student = out.students[i]
			cp[a] = e
		}
		out.scores[i] = cp
	}
	return out
}

func quote(s string) string { return `"` + s + `"` }
