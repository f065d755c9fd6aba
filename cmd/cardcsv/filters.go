package main

import (
	"strings"

	"github.com/yurifrl/cardcsv/pkg/csv"
	"github.com/yurifrl/cardcsv/pkg/models"
)

type filters struct {
	name   string
	types  []string
	colors []string
}

func (f *filters) toFilterFuncs() []csv.FilterFunc[models.Record] {
	var out []csv.FilterFunc[models.Record]
	if f.name != "" {
		needle := strings.ToLower(f.name)
		out = append(out, func(r models.Record) bool {
			name, _ := r["name"].(string)
			return strings.Contains(strings.ToLower(name), needle)
		})
	}
	if len(f.types) > 0 {
		out = append(out, anyOf("types", f.types))
	}
	if len(f.colors) > 0 {
		out = append(out, anyOf("colors", f.colors))
	}
	return out
}

// anyOf keeps records whose list field holds at least one of wanted.
func anyOf(field string, wanted []string) csv.FilterFunc[models.Record] {
	set := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		set[strings.ToLower(w)] = true
	}
	return func(r models.Record) bool {
		for _, v := range r.Strings(field) {
			if set[strings.ToLower(v)] {
				return true
			}
		}
		return false
	}
}
