package csv

import (
	"fmt"
	"io"
	"strings"
)

// FilterFunc decides whether a record is written.
type FilterFunc[T any] func(T) bool

// Filter returns the records accepted by every filter, keeping their order.
func Filter[T any](records []T, filters ...FilterFunc[T]) []T {
	if len(filters) == 0 {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if Match(r, filters...) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether every filter accepts record.
func Match[T any](record T, filters ...FilterFunc[T]) bool {
	for _, f := range filters {
		if f != nil && !f(record) {
			return false
		}
	}
	return true
}

// Writer writes already rendered lines, one per call, straight to the
// underlying writer.
type Writer struct {
	w    io.Writer
	sep  string
	rows int
}

func NewWriter(w io.Writer, sep string) *Writer {
	return &Writer{w: w, sep: sep}
}

// WriteHeader writes the column names joined by the separator.
func (w *Writer) WriteHeader(columns []string) error {
	return w.writeLine(strings.Join(columns, w.sep))
}

// WriteLine writes one data line.
func (w *Writer) WriteLine(line string) error {
	if err := w.writeLine(line); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data lines written, header excluded.
func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) writeLine(line string) error {
	if _, err := io.WriteString(w.w, line+"\n"); err != nil {
		return fmt.Errorf("error writing line: %w", err)
	}
	return nil
}
