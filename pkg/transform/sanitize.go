package transform

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Reminder text is always a single pair of parentheses, never nested.
var reminderTextRegex = regexp.MustCompile(`\(.*?\)`)

var (
	// newlines and the two unicode dashes found in card text, both as runes
	// and as the escaped spelling some dumps carry.
	textReplacer = strings.NewReplacer(
		"\n", " ",
		"\r", " ",
		"\u2212", "-",
		"\u2014", "-",
		`\u2212`, "-",
		`\u2014`, "-",
	)
)

// Options toggles the optional sanitization steps.
type Options struct {
	StripReminderText bool
	KeywordsOnly      bool
}

// Stringify returns the textual form of a scalar or list value.
func Stringify(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return formatNumber(v)
	case float64:
		return formatFloat(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "none", nil
	case []string:
		return strings.Join(v, " "), nil
	case []interface{}:
		parts := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return "", fmt.Errorf("list element %d has type %T, expected string", i, e)
			}
			parts[i] = s
		}
		return strings.Join(parts, " "), nil
	}
	return "", fmt.Errorf("unsupported value type %T", value)
}

// formatNumber keeps integers as written and renders floats with a trailing
// ".0" when integral, so 2 stays "2" and 2.0 stays "2.0".
func formatNumber(n json.Number) (string, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return s, nil
		}
		return strconv.FormatInt(i, 10), nil
	}
	f, err := n.Float64()
	if err != nil {
		return "", fmt.Errorf("invalid number %q: %w", s, err)
	}
	return formatFloat(f), nil
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', 12, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// Sanitize normalizes one rendered field value for the given column.
func (t *Transformer) Sanitize(value, column string) string {
	out := textReplacer.Replace(t.lower.String(value))

	if t.options.StripReminderText {
		out = reminderTextRegex.ReplaceAllString(out, "")
	}
	if t.options.KeywordsOnly && column == t.profile.TextColumn {
		out = t.keywordsIn(out)
	}
	if t.quoted[column] {
		out = `"` + out + `"`
	}
	return out
}

// keywordsIn keeps the whitelisted keywords found in text, in whitelist
// order, with their inner spaces removed.
func (t *Transformer) keywordsIn(text string) string {
	found := make([]string, 0, len(t.keywords))
	for _, kw := range t.keywords {
		if strings.Contains(text, kw) {
			found = append(found, strings.ReplaceAll(kw, " ", ""))
		}
	}
	return strings.Join(found, " ")
}
