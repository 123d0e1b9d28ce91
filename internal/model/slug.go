package model

import "strings"

const maxSlugLen = 200

// Slugify derives the URL identifier for a title: lowercase, every run
// of characters outside [a-z0-9] collapses to a single hyphen, leading
// and trailing hyphens are stripped, result capped at 200 characters.
// Idempotent: Slugify(Slugify(s)) == Slugify(s).
func Slugify(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}
