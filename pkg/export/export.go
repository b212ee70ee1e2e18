// Package export writes tabular data as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" (the default for blank input) or "xlsx".
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	return string(f)
}

// Writer receives a header followed by rows. Close flushes buffered output;
// Abort releases resources without producing any. Either ends the writer,
// and later calls to either are no-ops.
type Writer interface {
	WriteHeader(cols []string) error
	WriteRow(values []string) error
	Close() error
	Abort()
}

func NewWriter(f Format, w io.Writer, sheet string) (Writer, error) {
	switch f {
	case FormatCSV:
		return NewCSVWriter(w), nil
	case FormatXLSX:
		return NewXLSXWriter(w, sheet)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

type csvWriter struct {
	w    *csv.Writer
	done bool
}

func NewCSVWriter(w io.Writer) Writer {
	return &csvWriter{w: csv.NewWriter(w)}
}

func (c *csvWriter) WriteHeader(cols []string) error {
	return c.w.Write(cols)
}

func (c *csvWriter) WriteRow(values []string) error {
	return c.w.Write(values)
}

func (c *csvWriter) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	c.w.Flush()
	return c.w.Error()
}

// Abort drops rows still held in the csv buffer. Rows already flushed to the
// underlying writer stay there.
func (c *csvWriter) Abort() {
	c.done = true
}

type xlsxWriter struct {
	out    io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
	done   bool
}

// NewXLSXWriter streams rows into a single-sheet workbook that is written
// to w on Close.
func NewXLSXWriter(w io.Writer, sheet string) (Writer, error) {
	if sheet == "" {
		sheet = "Sheet1"
	}
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open xlsx stream: %w", err)
	}
	return &xlsxWriter{out: w, file: f, stream: sw}, nil
}

func (x *xlsxWriter) write(values []string, opts ...excelize.RowOpts) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return x.stream.SetRow(cell, row, opts...)
}

func (x *xlsxWriter) WriteHeader(cols []string) error {
	style, err := x.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	return x.write(cols, excelize.RowOpts{StyleID: style})
}

func (x *xlsxWriter) WriteRow(values []string) error {
	return x.write(values)
}

func (x *xlsxWriter) Close() error {
	if x.done {
		return nil
	}
	x.done = true
	defer x.file.Close()
	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush xlsx stream: %w", err)
	}
	_, err := x.file.WriteTo(x.out)
	return err
}

func (x *xlsxWriter) Abort() {
	if x.done {
		return
	}
	x.done = true
	x.file.Close()
}
