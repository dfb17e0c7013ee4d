package gsettings

import (
	"strings"
)

// Minimal GVariant text codec for the two value shapes shortcuts use:
// 's' single strings ('<Super>e') and 'as' string arrays (['<Super>1'],
// @as []). Anything else is not a shortcut value.

const (
	typeString      = "s"
	typeStringArray = "as"
)

// parseValue decodes gsettings output into its type string and members.
// ok is false for value shapes the adapter does not understand.
func parseValue(text string) (typ string, values []string, ok bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "@as ")

	switch {
	case strings.HasPrefix(text, "["):
		if !strings.HasSuffix(text, "]") {
			return "", nil, false
		}
		values, ok = parseArrayBody(text[1 : len(text)-1])
		return typeStringArray, values, ok
	case strings.HasPrefix(text, "'"):
		s, rest, ok := parseQuoted(text)
		if !ok || strings.TrimSpace(rest) != "" {
			return "", nil, false
		}
		return typeString, []string{s}, true
	}
	return "", nil, false
}

func parseArrayBody(body string) ([]string, bool) {
	values := []string{}
	body = strings.TrimSpace(body)
	for body != "" {
		s, rest, ok := parseQuoted(body)
		if !ok {
			return nil, false
		}
		values = append(values, s)
		rest = strings.TrimSpace(rest)
		if rest == "" {
			break
		}
		if !strings.HasPrefix(rest, ",") {
			return nil, false
		}
		body = strings.TrimSpace(rest[1:])
	}
	return values, true
}

// parseQuoted reads one single-quoted string off the front of text.
func parseQuoted(text string) (value, rest string, ok bool) {
	if !strings.HasPrefix(text, "'") {
		return "", "", false
	}
	var sb strings.Builder
	escaped := false
	for i := 1; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			sb.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '\'':
			return sb.String(), text[i+1:], true
		default:
			sb.WriteByte(c)
		}
	}
	return "", "", false
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// formatValue encodes members back to GVariant text for `gsettings set`.
func formatValue(typ string, values []string) string {
	if typ == typeString {
		if len(values) == 0 {
			return quote("")
		}
		return quote(values[0])
	}
	if len(values) == 0 {
		return "@as []"
	}
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, quote(v))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
