package models

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "default"

// Expansion turns a list-valued field into one binary column per option.
type Expansion struct {
	Field   string   `yaml:"field" json:"field"`
	Options []string `yaml:"options" json:"options"`
}

// Columns returns the header names of the binary columns, e.g. colors_white.
func (e Expansion) Columns() []string {
	out := make([]string, len(e.Options))
	for i, opt := range e.Options {
		out[i] = e.Field + "_" + strings.ToLower(strings.ReplaceAll(opt, " ", ""))
	}
	return out
}

// Profile describes which columns are emitted and how they are rendered.
type Profile struct {
	Name          string      `yaml:"name" json:"name"`
	Columns       []string    `yaml:"columns" json:"columns"`
	QuotedColumns []string    `yaml:"quoted_columns" json:"quoted_columns"`
	TextColumn    string      `yaml:"text_column" json:"text_column"`
	Keywords      []string    `yaml:"keywords" json:"-"`
	Separator     string      `yaml:"separator" json:"separator"`
	Expansions    []Expansion `yaml:"expansions" json:"expansions,omitempty"`
}

// IsQuoted reports whether column values are wrapped in double quotes.
func (p Profile) IsQuoted(column string) bool {
	for _, c := range p.QuotedColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Header returns all output column names in order, expansions last.
func (p Profile) Header() []string {
	header := append([]string{}, p.Columns...)
	for _, e := range p.Expansions {
		header = append(header, e.Columns()...)
	}
	return header
}

// Validate checks that the profile can produce rows.
func (p Profile) Validate() error {
	if len(p.Columns) == 0 && len(p.Expansions) == 0 {
		return fmt.Errorf("profile %q has no columns", p.Name)
	}
	if p.Separator == "" {
		return fmt.Errorf("profile %q has an empty separator", p.Name)
	}
	seen := make(map[string]bool)
	for _, c := range p.Header() {
		if seen[c] {
			return fmt.Errorf("profile %q repeats column %q", p.Name, c)
		}
		seen[c] = true
	}
	return nil
}

var (
	defaultQuoted = []string{"name", "text", "types", "subtypes", "colors"}

	// Colors lists the deckbrew color values in WUBRG order.
	Colors = []string{"white", "blue", "black", "red", "green"}

	// Keywords is the ability-keyword whitelist used by keywords-only mode.
	Keywords = []string{
		"Deathtouch", "Defender", "Double Strike", "Enchant", "Equip", "First Strike", "Flash",
		"Flying", "Haste", "Hexproof", "Indestructible", "Lifelink", "Menace", "Prowess", "Reach",
		"Trample", "Vigilance", "Absorb", "Affinity", "Amplify", "Annihilator", "Aura Swap",
		"Awaken", "Banding", "Battle Cry", "Bestow", "Bloodthirst", "Bushido", "Buyback",
		"Cascade", "Champion", "Changeling", "Cipher", "Conspire", "Convoke", "Cumulative Upkeep",
		"Cycling", "Dash", "Delve", "Dethrone", "Devoid", "Devour", "Dredge", "Echo", "Entwine",
		"Epic", "Evoke", "Evolve", "Exalted", "Exploit", "Extort", "Fading", "Fear", "Flanking",
		"Flashback", "Forecast", "Fortify", "Frenzy", "Fuse", "Graft", "Gravestorm", "Haunt",
		"Hidden Agenda", "Hideaway", "Horsemanship", "Infect", "Ingest", "Intimidate", "Kicker",
		"Landhome", "Landwalk", "Level Up", "Living Weapon", "Madness", "Megamorph", "Miracle",
		"Modular", "Morph", "Myriad", "Ninjutsu", "Offering", "Outlast", "Overload", "Persist",
		"Phasing", "Poisonous", "Protection", "Provoke", "Prowl", "Rampage", "Rebound", "Recover",
		"Reinforce", "Renown", "Replicate", "Retrace", "Ripple", "Scavenge", "Skulk", "Shadow",
		"Shroud", "Soulbond", "Soulshift", "Splice", "Split Second", "Storm", "Substance",
		"Sunburst", "Surge", "Suspend", "Totem Armor", "Transfigure", "Transmute", "Tribute",
		"Undying", "Unearth", "Unleash", "Vanishing", "Wither",
	}
)

func builtin(name string, columns []string, expansions ...Expansion) Profile {
	return Profile{
		Name:          name,
		Columns:       columns,
		QuotedColumns: defaultQuoted,
		TextColumn:    "text",
		Keywords:      Keywords,
		Separator:     ",",
		Expansions:    expansions,
	}
}

var colorFlags = Expansion{Field: "colors", Options: Colors}

var profiles = map[string]Profile{
	DefaultProfile: builtin(DefaultProfile, []string{"name", "cmc", "colors", "subtypes", "power", "toughness", "text"}),
	"full":         builtin("full", []string{"name", "cmc", "power", "toughness", "types", "subtypes", "colors", "text"}),
	"stats-text":   builtin("stats-text", []string{"name", "cmc", "power", "toughness", "text"}),
	"stats":        builtin("stats", []string{"name", "cmc", "power", "toughness"}),
	"types":        builtin("types", []string{"name", "cmc", "types", "colors", "text", "subtypes"}),
	"color-flags":  builtin("color-flags", []string{"name", "cmc", "power", "toughness", "text"}, colorFlags),
}

// LookupProfile returns the built-in profile registered under name.
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames lists the built-in profiles in alphabetical order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
