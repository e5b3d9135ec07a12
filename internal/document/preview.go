package document

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultPreviewFields are checked in order when building an excerpt.
var DefaultPreviewFields = []string{"clientName", "propertyAddress", "title", "name"}

const maxExcerptRunes = 60

// Excerpt returns a short human-readable hint of what p contains. The first
// non-empty field from preferred wins; otherwise the first non-empty string
// field in key order is used.
func Excerpt(p Payload, preferred []string) string {
	for _, f := range preferred {
		if s, ok := p[f].(string); ok && strings.TrimSpace(s) != "" {
			return truncate(f + ": " + strings.TrimSpace(s))
		}
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if s, ok := p[k].(string); ok && strings.TrimSpace(s) != "" {
			return truncate(k + ": " + strings.TrimSpace(s))
		}
	}
	if n := len(p); n > 0 {
		return fmt.Sprintf("%d field(s)", n)
	}
	return ""
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxExcerptRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxExcerptRunes-1]) + "…"
}

// IsMeaningful reports whether p has at least one populated field.
// Empty strings, nil, and empty collections are placeholders.
func IsMeaningful(p Payload) bool {
	for _, v := range p {
		if populated(v) {
			return true
		}
	}
	return false
}

func populated(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case map[string]any:
		return IsMeaningful(t)
	case Payload:
		return IsMeaningful(t)
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	default:
		return true
	}
}
