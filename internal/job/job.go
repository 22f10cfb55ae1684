// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package job runs conversions against files on disk. A Job names the input
// files, the handlers and their parameters, an optional template, and the
// output path; Run opens everything, calls convert.Convert and writes the
// rendered document. Batch files hold a list of jobs in YAML.
package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/convert"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/input"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/output"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/sheet"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// ErrOutputDir is returned when the directory of the output path does not
// exist.
var ErrOutputDir = errors.New("output directory does not exist")

// Job is one conversion between files.
type Job struct {
	Name      string         `yaml:"name,omitempty"`
	From      string         `yaml:"from" validate:"required"`
	InParams  map[string]any `yaml:"in_params,omitempty"`
	Inputs    []string       `yaml:"inputs" validate:"required,min=1"`
	To        string         `yaml:"to" validate:"required"`
	OutParams map[string]any `yaml:"out_params,omitempty"`
	Template  string         `yaml:"template,omitempty"`
	Output    string         `yaml:"output" validate:"required"`

	// Mode and Warn override the merge policy the job runs with.
	Mode string `yaml:"mode,omitempty" validate:"omitempty,oneof=overwrite preserve increment error"`
	Warn *bool  `yaml:"warn,omitempty"`
}

// Label names the job in logs: its Name, else its output path.
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Output
}

// Policy applies the job's overrides to defaults.
func (j Job) Policy(defaults merge.Policy) (merge.Policy, error) {
	p := defaults
	if j.Mode != "" {
		m, err := merge.ParseMode(j.Mode)
		if err != nil {
			return merge.Policy{}, err
		}
		p.Mode = m
	}
	if j.Warn != nil {
		p.Warn = *j.Warn
	}
	return p, nil
}

// Resolve returns a copy of j with relative file paths joined onto dir.
func (j Job) Resolve(dir string) Job {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	out := j
	out.Inputs = make([]string, len(j.Inputs))
	for i, p := range j.Inputs {
		out.Inputs[i] = join(p)
	}
	out.Template = join(j.Template)
	out.Output = join(j.Output)
	return out
}

// Outcome is a finished job.
type Outcome struct {
	Job    Job
	Path   string // where the document was written
	Result *convert.Result
}

// Run executes j. Nothing is written when the conversion fails.
func Run(ctx context.Context, j Job, defaults merge.Policy) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := params.Validate(j); err != nil {
		return nil, fmt.Errorf("job %s: %w", j.Label(), err)
	}
	policy, err := j.Policy(defaults)
	if err != nil {
		return nil, err
	}

	in, err := input.New(j.From, j.InParams)
	if err != nil {
		return nil, err
	}
	out, err := output.New(j.To, j.OutParams)
	if err != nil {
		return nil, err
	}

	if err := checkDir(j.Output); err != nil {
		return nil, err
	}

	var existing *types.Document
	if j.Template != "" {
		existing, err = readTemplate(j.Template)
		if err != nil {
			return nil, err
		}
	}

	sources, closeAll, err := openSources(j.Inputs)
	if err != nil {
		return nil, err
	}
	defer closeAll()

	res, err := convert.Convert(convert.Request{
		Input:    in,
		Sources:  sources,
		Output:   out,
		Existing: existing,
		Policy:   policy,
	})
	if err != nil {
		return nil, err
	}

	path, err := writeDocument(j.Output, res.Document)
	if err != nil {
		return nil, err
	}
	return &Outcome{Job: j, Path: path, Result: res}, nil
}

func openSources(paths []string) ([]types.Source, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	sources := make([]types.Source, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening input: %w", err)
		}
		files = append(files, f)
		sources = append(sources, types.Source{Name: filepath.Base(p), Reader: f})
	}
	return sources, closeAll, nil
}

func readTemplate(path string) (*types.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening template: %w", err)
	}
	defer f.Close()

	doc, err := sheet.Decode(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return doc, nil
}

// writeDocument encodes doc in the container named by the extension of path
// and writes it to a new file, see Create. It returns the path written.
func writeDocument(path string, doc *types.Document) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		doc.Encoding = types.EncodingXLSX
	case ".csv":
		doc.Encoding = types.EncodingCSV
	}

	var buf bytes.Buffer
	if err := sheet.Encode(&buf, doc); err != nil {
		return "", fmt.Errorf("encoding output: %w", err)
	}

	f, err := Create(path)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing output: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing output: %w", err)
	}
	return f.Name(), nil
}

// Create creates a new file at path. If something already exists there it
// tries "_1", "_2", ... appended to the file stem, so an existing document
// (often the template itself) is never overwritten. Files are created with
// O_EXCL, so jobs running at once with the same output get distinct files.
func Create(path string) (*os.File, error) {
	if err := checkDir(path); err != nil {
		return nil, err
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 0; ; n++ {
		candidate := path
		if n > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("creating output: %w", err)
		}
		return f, nil
	}
}

func checkDir(path string) error {
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrOutputDir, dir)
	}
	return nil
}
