// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package summary computes per-assignment score statistics for a roster.
package summary

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// Assignment summarizes the scores of one assignment. The statistics cover
// numeric scores only and are zero when Count is zero.
type Assignment struct {
	Assignment string  `json:"assignment" yaml:"assignment"`
	Count      int     `json:"count" yaml:"count"`
	Text       int     `json:"text,omitempty" yaml:"text,omitempty"`
	Missing    int     `json:"missing,omitempty" yaml:"missing,omitempty"`
	Mean       float64 `json:"mean" yaml:"mean"`
	Median     float64 `json:"median" yaml:"median"`
	Min        float64 `json:"min" yaml:"min"`
	Max        float64 `json:"max" yaml:"max"`
	StdDev     float64 `json:"std_dev" yaml:"std_dev"`
}

// Compute returns one summary per roster assignment, in assignment order.
func Compute(r *types.Roster) ([]Assignment, error) {
	out := make([]Assignment, 0, len(r.Assignments()))
	for _, a := range r.Assignments() {
		s := Assignment{Assignment: a}
		var data stats.Float64Data
		for i := 0; i < r.Len(); i++ {
			v := r.Value(i, a)
			if v.IsAbsent() {
				s.Missing++
				continue
			}
			f, ok := v.Float()
			if !ok {
				s.Text++
				continue
			}
			data = append(data, f)
		}
		s.Count = len(data)
		if s.Count > 0 {
			if err := describe(&s, data); err != nil {
				return nil, fmt.Errorf("summarizing %s: %w", a, err)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func describe(s *Assignment, data stats.Float64Data) error {
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return err
	}
	s.StdDev, err = stats.StandardDeviation(data)
	return err
}
