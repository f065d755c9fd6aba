package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a single card object as decoded from the input document. Values
// are strings, json.Number, bools, nil, []interface{} or nested objects.
type Record map[string]interface{}

// Lookup returns the value stored under field and whether it was present.
func (r Record) Lookup(field string) (interface{}, bool) {
	v, ok := r[field]
	return v, ok
}

// Strings returns the string elements of a sequence field. A missing field
// yields an empty slice; non-string elements are skipped.
func (r Record) Strings(field string) []string {
	v, ok := r[field]
	if !ok {
		return nil
	}
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, e := range vals {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{vals}
	}
	return nil
}

// String returns the card name when available, for log lines.
func (r Record) String() string {
	if name, ok := r["name"].(string); ok {
		return name
	}
	return fmt.Sprintf("record(%d fields)", len(r))
}

// DecodeRecord decodes one JSON object keeping numbers as json.Number so
// integers and floats keep the spelling they had in the input.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var r Record
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeRecords decodes a top-level JSON array of objects.
func DecodeRecords(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level array")
	}
	return records, nil
}
