package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ExtractJSON parses JSON out of model output that may be:
// - pure JSON
// - JSON wrapped in markdown code fences (```json ... ```)
// - JSON embedded in surrounding prose
//
// The relaxation is progressive: direct parse first, then fence stripping,
// then a balanced-brace scan. Only when all three fail is an error returned.
func ExtractJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	if stripped := stripCodeFences(input); stripped != "" {
		if err := json.Unmarshal([]byte(stripped), target); err == nil {
			return nil
		}
	}

	if span := firstBalancedSpan(input); span != "" {
		if err := json.Unmarshal([]byte(span), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no parsable JSON in input: %s", truncate(input, 100))
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
)

// stripCodeFences removes leading/trailing markdown fence markers and returns
// the inner content when it looks like JSON.
func stripCodeFences(input string) string {
	if m := fencedJSONRe.FindStringSubmatch(input); len(m) > 1 {
		content := strings.TrimSpace(m[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}
	return ""
}

// firstBalancedSpan returns the first balanced {...} or [...] span in input,
// honoring string literals and escapes.
func firstBalancedSpan(input string) string {
	objStart := strings.Index(input, "{")
	arrStart := strings.Index(input, "[")

	if objStart >= 0 {
		if span := balancedFrom(input[objStart:], '{', '}'); span != "" {
			// Prefer whichever opens first.
			if arrStart < 0 || objStart < arrStart {
				return span
			}
		}
	}
	if arrStart >= 0 {
		if span := balancedFrom(input[arrStart:], '[', ']'); span != "" {
			return span
		}
	}
	if objStart >= 0 {
		return balancedFrom(input[objStart:], '{', '}')
	}
	return ""
}

func balancedFrom(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
