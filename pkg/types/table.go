// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package types

import (
	"io"
	"strings"
)

// Table is a grid of cell strings: one header row followed by data rows.
// Rows may be shorter than the header; missing cells read as empty.
type Table struct {
	Header []string   `json:"header" yaml:"header"`
	Rows   [][]string `json:"rows" yaml:"rows"`
}

// Column returns the index of the header equal to name after normalization,
// or -1.
func (t *Table) Column(name string) int {
	want := NormalizeKey(name)
	for i, h := range t.Header {
		if NormalizeKey(h) == want {
			return i
		}
	}
	return -1
}

// Cell returns the cell at row r, column c, or "" if out of range.
func (t *Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

// SetCell writes a cell, growing the row to the header width if needed.
func (t *Table) SetCell(r, c int, v string) {
	row := t.Rows[r]
	for len(row) <= c {
		row = append(row, "")
	}
	row[c] = v
	t.Rows[r] = row
}

// AddColumn appends a header and returns its index.
func (t *Table) AddColumn(name string) int {
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

// AddRow appends an empty row of header width and returns its index.
func (t *Table) AddRow() int {
	t.Rows = append(t.Rows, make([]string, len(t.Header)))
	return len(t.Rows) - 1
}

// Clone returns a deep copy.
func (t *Table) Clone() Table {
	out := Table{Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// Records returns header and rows as one slice, each row padded to the
// header width.
func (t *Table) Records() [][]string {
	width := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, pad(t.Header, width))
	for _, r := range t.Rows {
		out = append(out, pad(r, width))
	}
	return out
}

func pad(r []string, n int) []string {
	out := make([]string, n)
	copy(out, r)
	return out
}

// IsBlankRow reports whether every cell in row r is empty.
func (t *Table) IsBlankRow(r int) bool {
	for _, c := range t.Rows[r] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Encoding is the on-disk container of a document.
type Encoding string

const (
	EncodingCSV  Encoding = "csv"
	EncodingXLSX Encoding = "xlsx"
)

// Document is an existing or rendered destination document. The core works on
// Table; Encoding, Sheet and Raw are layout metadata it passes through so the
// document can be written back in its original container and styling.
type Document struct {
	Format   string   `json:"format" yaml:"format"`
	Table    Table    `json:"table" yaml:"table"`
	Encoding Encoding `json:"encoding" yaml:"encoding"`
	Sheet    string   `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	BOM      bool     `json:"bom,omitempty" yaml:"bom,omitempty"`
	CRLF     bool     `json:"crlf,omitempty" yaml:"crlf,omitempty"`
	Raw      []byte   `json:"-" yaml:"-"`

	// Lines holds each decoded CSV record, header first, with its original
	// text so unchanged records are written back byte for byte.
	Lines []Line `json:"-" yaml:"-"`
}

// Line is one CSV record as decoded and as it appeared in the file,
// including its line terminator.
type Line struct {
	Cells []string
	Text  []byte
}

// Derive returns a new document with the given table and the metadata of d.
// A nil d yields a CSV document.
func (d *Document) Derive(format string, t Table) *Document {
	out := &Document{Format: format, Table: t, Encoding: EncodingCSV}
	if d != nil {
		out.Encoding, out.Sheet, out.BOM, out.CRLF = d.Encoding, d.Sheet, d.BOM, d.CRLF
		out.Raw, out.Lines = d.Raw, d.Lines
	}
	return out
}

// Source is one readable input handed to the core by the calling layer.
type Source struct {
	// Name labels the source in errors and per-source assignment ids,
	// usually the file's base name.
	Name   string
	Reader io.Reader
}
