package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yurifrl/cardcsv/pkg/models"
)

// MissingSentinel is emitted for absent unquoted columns.
const MissingSentinel = -1

// RecordError reports the record that could not be turned into a line.
type RecordError struct {
	Index  int
	Column string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d, column %q: %v", e.Index, e.Column, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Transformer renders records as separator-joined lines for one profile.
// A Transformer is not safe for concurrent use.
type Transformer struct {
	profile  models.Profile
	options  Options
	logger   *log.Logger
	quoted   map[string]bool
	keywords []string
	lower    cases.Caser
	dumper   *pp.PrettyPrinter
}

// New builds a transformer. Keywords are matched case-insensitively, so the
// profile's whitelist is lowered once here.
func New(profile models.Profile, options Options, logger *log.Logger) *Transformer {
	if logger == nil {
		logger = log.Default()
	}

	quoted := make(map[string]bool, len(profile.QuotedColumns))
	for _, c := range profile.QuotedColumns {
		quoted[c] = true
	}

	lower := cases.Lower(language.Und)
	keywords := make([]string, len(profile.Keywords))
	for i, kw := range profile.Keywords {
		keywords[i] = lower.String(kw)
	}

	dumper := pp.New()
	dumper.SetColoringEnabled(false)

	return &Transformer{
		profile:  profile,
		options:  options,
		logger:   logger,
		quoted:   quoted,
		keywords: keywords,
		lower:    lower,
		dumper:   dumper,
	}
}

// Profile returns the profile the transformer renders.
func (t *Transformer) Profile() models.Profile {
	return t.profile
}

// Header returns the header line: the column names joined by the separator.
func (t *Transformer) Header() string {
	return strings.Join(t.profile.Header(), t.profile.Separator)
}

// Values returns the sanitized per-column values of one record.
func (t *Transformer) Values(record models.Record) ([]string, error) {
	values := make([]string, 0, len(t.profile.Columns))
	for _, col := range t.profile.Columns {
		raw, ok := record.Lookup(col)
		if !ok {
			if t.quoted[col] {
				raw = ""
			} else {
				raw = MissingSentinel
			}
		}

		text, err := Stringify(raw)
		if err != nil {
			return nil, &RecordError{Column: col, Err: err}
		}
		values = append(values, t.Sanitize(text, col))
	}

	for _, e := range t.profile.Expansions {
		values = append(values, Expand(record, e.Field, e.Options)...)
	}
	return values, nil
}

// Line renders one record. Separators inside unquoted values are not
// escaped; such a value shifts the remaining columns of its row.
func (t *Transformer) Line(record models.Record) (string, error) {
	values, err := t.Values(record)
	if err != nil {
		return "", err
	}
	return strings.Join(values, t.profile.Separator), nil
}

// Transform renders every record in order. It stops at the first failing
// record, logs it, and returns the lines produced so far with the error.
func (t *Transformer) Transform(records []models.Record) ([]string, error) {
	lines := make([]string, 0, len(records))
	for i, record := range records {
		line, err := t.Line(record)
		if err != nil {
			return lines, t.fail(i, record, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Each renders records one at a time and hands every line to emit, so output
// already written survives a later failure.
func (t *Transformer) Each(records []models.Record, emit func(line string) error) error {
	return t.EachWhere(records, nil, emit)
}

// EachWhere is Each restricted to the records keep accepts. Failures still
// report the record's position in records.
func (t *Transformer) EachWhere(records []models.Record, keep func(models.Record) bool, emit func(line string) error) error {
	for i, record := range records {
		if keep != nil && !keep(record) {
			continue
		}
		line, err := t.Line(record)
		if err != nil {
			return t.fail(i, record, err)
		}
		if err := emit(line); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transformer) fail(index int, record models.Record, err error) error {
	t.logger.Error("failed to parse", "index", index, "record", t.dumper.Sprint(map[string]interface{}(record)), "err", err)

	var recErr *RecordError
	if errors.As(err, &recErr) {
		recErr.Index = index
		return recErr
	}
	return &RecordError{Index: index, Err: err}
}
