package security

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultMaxChars is the ceiling applied to every string leaf.
const DefaultMaxChars = 10000

var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[<>]`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+=`),
}

// Sanitizer strips markup and script patterns from decoded JSON values.
type Sanitizer struct {
	maxChars int
}

// NewSanitizer creates a Sanitizer truncating strings to maxChars runes.
func NewSanitizer(maxChars int) *Sanitizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Sanitizer{maxChars: maxChars}
}

// Value walks a value produced by encoding/json. Strings are cleaned, slices
// and maps are rebuilt with cleaned members, everything else is returned as is.
func (s *Sanitizer) Value(v any) any {
	switch val := v.(type) {
	case string:
		return s.String(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = s.Value(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = s.Value(item)
		}
		return out
	default:
		return v
	}
}

// String cleans a single string. Patterns are removed until none remain so
// that fragments rejoined by a removal are caught, then the result is cut to
// the ceiling. Sanitizing an already sanitized string is a no-op.
func (s *Sanitizer) String(value string) string {
	value = strings.TrimSpace(value)

	for {
		cleaned := value
		for _, re := range dangerousPatterns {
			cleaned = re.ReplaceAllString(cleaned, "")
		}
		if cleaned == value {
			break
		}
		value = cleaned
	}
	value = strings.TrimSpace(value)

	if runes := []rune(value); len(runes) > s.maxChars {
		value = strings.TrimRightFunc(string(runes[:s.maxChars]), unicode.IsSpace)
	}
	return value
}
