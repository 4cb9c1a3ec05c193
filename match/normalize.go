package match

import "strings"

// Normalize prepares text for comparison: it lowercases s, turns every rune
// that is not an ASCII letter, ASCII digit, or underscore into a space, and
// collapses whitespace to single spaces with none at either end.
//
// Punctuation becomes a separator rather than being deleted, so "e-mail"
// normalizes to "e mail", not "email". Non-ASCII letters are treated as
// punctuation.
//
// Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		if !isWordRune(r) {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte(' ')
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String()
}

// Words splits normalized text into words. It returns nil for empty text.
func Words(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	default:
		return r == '_'
	}
}
