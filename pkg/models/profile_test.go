package models

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuiltinProfilesValidate(t *testing.T) {
	for _, name := range ProfileNames() {
		p, err := LookupProfile(name)
		if err != nil {
			t.Fatalf("LookupProfile(%q) failed: %v", name, err)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("profile %q: %v", name, err)
		}
	}
}

func TestLookupProfile(t *testing.T) {
	p, err := LookupProfile("")
	if err != nil || p.Name != DefaultProfile {
		t.Fatalf("expected default profile, got %q (%v)", p.Name, err)
	}
	if _, err := LookupProfile("nope"); err == nil || !strings.Contains(err.Error(), "available") {
		t.Errorf("expected unknown profile error listing names, got %v", err)
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr string
	}{
		{"no columns", Profile{Name: "p", Separator: ","}, "no columns"},
		{"empty separator", Profile{Name: "p", Columns: []string{"name"}}, "empty separator"},
		{"duplicate column", Profile{Name: "p", Columns: []string{"name", "cmc", "name"}, Separator: ","}, `repeats column "name"`},
		{
			"expansion clashes with column",
			Profile{
				Name:       "p",
				Columns:    []string{"colors_red"},
				Separator:  ",",
				Expansions: []Expansion{{Field: "colors", Options: []string{"Red"}}},
			},
			`repeats column "colors_red"`,
		},
	}
	for _, tt := range tests {
		err := tt.profile.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestExpansionColumns(t *testing.T) {
	e := Expansion{Field: "colors", Options: []string{"White", "Double Strike"}}
	want := []string{"colors_white", "colors_doublestrike"}
	if got := e.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}

	p := Profile{Columns: []string{"name"}, Expansions: []Expansion{e}}
	if got := p.Header(); !reflect.DeepEqual(got, append([]string{"name"}, want...)) {
		t.Errorf("Header() = %v", got)
	}
}

func TestRecordStrings(t *testing.T) {
	r := Record{
		"colors":   []interface{}{"White", 3, "Blue"},
		"types":    "Creature",
		"subtypes": []string{"Angel"},
		"cmc":      4,
	}

	tests := []struct {
		field string
		want  []string
	}{
		{"colors", []string{"White", "Blue"}},
		{"types", []string{"Creature"}},
		{"subtypes", []string{"Angel"}},
		{"cmc", nil},
		{"missing", nil},
	}
	for _, tt := range tests {
		if got := r.Strings(tt.field); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Strings(%q) = %#v, want %#v", tt.field, got, tt.want)
		}
	}
}

func TestDecodeRecordsTrailingData(t *testing.T) {
	if _, err := DecodeRecords([]byte(`[{"name": "a"}] [1]`)); err == nil {
		t.Error("expected error for data after the array")
	}
	records, err := DecodeRecords([]byte(`[{"name": "Serra Angel", "cmc": 5}]`))
	if err != nil {
		t.Fatalf("DecodeRecords failed: %v", err)
	}
	if got := records[0].String(); got != "Serra Angel" {
		t.Errorf("String() = %q", got)
	}
	if got := (Record{"cmc": 1}).String(); got != "record(1 fields)" {
		t.Errorf("String() = %q", got)
	}
}
