package transform

import "github.com/yurifrl/cardcsv/pkg/models"

// Expand returns one "1"/"0" flag per option, in option order, telling
// whether the option is among the record's values for field.
func Expand(record models.Record, field string, options []string) []string {
	have := make(map[string]bool)
	for _, v := range record.Strings(field) {
		have[v] = true
	}

	out := make([]string, len(options))
	for i, opt := range options {
		if have[opt] {
			out[i] = "1"
		} else {
			out[i] = "0"
		}
	}
	return out
}
