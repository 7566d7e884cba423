// Package slug builds URL and object-key safe names.
package slug

import "strings"

const maxLen = 48

// FromName lower-cases s, keeps ASCII letters and digits and joins the rest
// with single dashes. The result is capped at 48 bytes; an empty result
// becomes "brand".
func FromName(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
		if b.Len() >= maxLen {
			break
		}
	}

	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	if out == "" {
		return "brand"
	}
	return out
}
