package pkg

import "strings"

// Slugify lowercases name, collapses every non-alphanumeric run into a
// single hyphen and trims leading/trailing hyphens.
// "Tech & Coffee Lovers!!" -> "tech-coffee-lovers"
func Slugify(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}
