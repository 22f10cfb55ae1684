// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package job

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
)

// File is the on-disk representation of a batch of jobs.
type File struct {
	// Parallel overrides batch.parallel from the config when positive.
	Parallel int   `yaml:"parallel,omitempty"`
	Jobs     []Job `yaml:"jobs"`
}

// ReadFile loads a batch file. Job paths are returned as written; see
// Job.Resolve.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	return &f, nil
}

// WriteFile saves f as YAML.
func WriteFile(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling batch file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveJob appends j to the batch file at path, creating the file if needed.
func SaveJob(path string, j Job) error {
	f, err := ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		f, err = &File{}, nil
	}
	if err != nil {
		return err
	}
	f.Jobs = append(f.Jobs, j)
	return WriteFile(path, f)
}

// Report is the result of one job in a batch.
type Report struct {
	Job     Job
	Outcome *Outcome
	Err     error
}

// BatchResult holds the outcome of a batch run. Reports are in job order.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
	Reports   []Report
}

// Total returns the number of jobs in the batch.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any job failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// RunBatch runs jobs with at most parallel running at once. A failing job
// does not stop the others; jobs not yet started when ctx is cancelled are
// counted as skipped.
func RunBatch(ctx context.Context, jobs []Job, defaults merge.Policy, parallel int) BatchResult {
	if parallel < 1 {
		parallel = 1
	}

	reports := make([]Report, len(jobs))
	skipped := make([]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, j := range jobs {
		reports[i].Job = j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				reports[i].Err = err
				skipped[i] = true
				return nil
			}
			reports[i].Outcome, reports[i].Err = Run(gctx, j, defaults)
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Reports: reports}
	for i, r := range reports {
		switch {
		case skipped[i]:
			result.Skipped++
		case r.Err != nil:
			result.Failed++
		default:
			result.Converted++
		}
	}
	return result
}
