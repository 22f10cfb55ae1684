// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package sheet decodes CSV and XLSX spreadsheets into tables and encodes
// rendered documents back into their original container.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	zipMagic = []byte("PK\x03\x04")
)

// defaultSheet names the worksheet of a workbook created from scratch.
const defaultSheet = "Sheet1"

// Decode reads a whole spreadsheet from r. XLSX is recognized by its zip
// signature; anything else is parsed as CSV. The returned document keeps the
// original bytes so Encode can write changes back into the same workbook.
func Decode(name string, r io.Reader) (*types.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &types.ConversionError{Kind: types.ErrMalformedInput, Source: name, Detail: "reading", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &types.ConversionError{Kind: types.ErrMalformedInput, Source: name, Detail: "file is empty"}
	}

	var doc *types.Document
	if bytes.HasPrefix(data, zipMagic) {
		doc, err = decodeXLSX(data)
	} else {
		doc, err = decodeCSV(data)
	}
	if err != nil {
		return nil, &types.ConversionError{Kind: types.ErrMalformedInput, Source: name, Err: err}
	}
	doc.Raw = data
	return doc, nil
}

// ReadTable decodes a source into its table.
func ReadTable(src types.Source) (types.Table, error) {
	doc, err := Decode(src.Name, src.Reader)
	if err != nil {
		return types.Table{}, err
	}
	return doc.Table, nil
}

func decodeCSV(data []byte) (*types.Document, error) {
	doc := &types.Document{Encoding: types.EncodingCSV}
	if bytes.HasPrefix(data, utf8BOM) {
		doc.BOM = true
		data = data[len(utf8BOM):]
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	var (
		records [][]string
		start   int64
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing CSV: %w", err)
		}
		end := cr.InputOffset()
		records = append(records, rec)
		doc.Lines = append(doc.Lines, types.Line{
			Cells: append([]string(nil), rec...),
			Text:  data[start:end],
		})
		start = end
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	doc.CRLF = bytes.HasSuffix(doc.Lines[0].Text, []byte("\r\n"))
	doc.Table = types.Table{Header: records[0], Rows: records[1:]}
	return doc, nil
}

func decodeXLSX(data []byte) (*types.Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name := sheets[0]
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", name)
	}
	return &types.Document{
		Encoding: types.EncodingXLSX,
		Sheet:    name,
		Table:    types.Table{Header: rows[0], Rows: rows[1:]},
	}, nil
}

// Encode writes doc in its encoding. XLSX documents derived from a template
// are written into a copy of the template workbook, touching only cells whose
// text changed, so styles, widths and other sheets survive.
func Encode(w io.Writer, doc *types.Document) error {
	switch doc.Encoding {
	case types.EncodingXLSX:
		return encodeXLSX(w, doc)
	default:
		return encodeCSV(w, doc)
	}
}

// encodeCSV writes records that are unchanged since decoding with their
// original text, so quoting, ragged rows and line endings survive. Other
// records are written with the document's line ending.
func encodeCSV(w io.Writer, doc *types.Document) error {
	if doc.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("writing BOM: %w", err)
		}
	}

	records := doc.Table.Records()
	// A widened table needs every record padded to the new width.
	reuse := len(records) > 0 && len(records[0]) <= lineWidth(doc.Lines)

	cw := csv.NewWriter(w)
	cw.UseCRLF = doc.CRLF
	for i, rec := range records {
		if reuse && i < len(doc.Lines) && sameCells(doc.Lines[i].Cells, rec) {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("writing CSV: %w", err)
			}
			if err := writeLine(w, doc.Lines[i].Text, i < len(records)-1, doc.CRLF); err != nil {
				return fmt.Errorf("writing CSV: %w", err)
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

// writeLine writes original record text, terminating it when more records
// follow and the file's last line had no terminator.
func writeLine(w io.Writer, text []byte, more, crlf bool) error {
	if _, err := w.Write(text); err != nil {
		return err
	}
	if !more || bytes.HasSuffix(text, []byte("\n")) {
		return nil
	}
	term := "\n"
	if crlf {
		term = "\r\n"
	}
	_, err := io.WriteString(w, term)
	return err
}

func lineWidth(lines []types.Line) int {
	n := 0
	for _, l := range lines {
		n = max(n, len(l.Cells))
	}
	return n
}

// sameCells reports whether orig, padded with empty cells, equals rec.
func sameCells(orig, rec []string) bool {
	if len(orig) > len(rec) {
		return false
	}
	for c, v := range rec {
		o := ""
		if c < len(orig) {
			o = orig[c]
		}
		if o != v {
			return false
		}
	}
	return true
}

func encodeXLSX(w io.Writer, doc *types.Document) error {
	var (
		f       *excelize.File
		err     error
		current [][]string
	)
	name := doc.Sheet
	if len(doc.Raw) > 0 && bytes.HasPrefix(doc.Raw, zipMagic) {
		f, err = excelize.OpenReader(bytes.NewReader(doc.Raw))
		if err != nil {
			return fmt.Errorf("opening template workbook: %w", err)
		}
		if name == "" {
			name = f.GetSheetList()[0]
		}
		current, err = f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("reading template sheet %q: %w", name, err)
		}
	} else {
		f = excelize.NewFile()
		if name == "" {
			name = defaultSheet
		} else if err := f.SetSheetName(defaultSheet, name); err != nil {
			f.Close()
			return fmt.Errorf("naming sheet: %w", err)
		}
	}
	defer f.Close()

	for r, row := range doc.Table.Records() {
		for c, v := range row {
			if cellAt(current, r, c) == v {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, ref, cellValue(v)); err != nil {
				return fmt.Errorf("writing cell %s: %w", ref, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

// cellValue stores numbers as numbers so the gradebook application sees
// numeric cells. Only text that a number renders back to exactly is
// converted; "00123" and "85.50" stay strings.
func cellValue(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil && types.FormatNumber(f) == v {
		return f
	}
	return v
}
