package provider

import "strings"

// Slugify converts a display name into a stable identifier: lowercase,
// with runs of non-alphanumeric characters collapsed to single hyphens.
// "Hugging Face" becomes "hugging-face". Distinct names can collide
// ("Foo Bar" and "Foo-Bar"); catalog names are chosen to avoid that.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
