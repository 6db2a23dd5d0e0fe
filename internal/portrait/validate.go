package portrait

import "strings"

// IsValidImageURL reports whether s may point to a photographic portrait.
// Vector formats and URLs naming non-portrait subjects are rejected; only
// jpeg, png and webp resources (optionally followed by a query string) pass.
func IsValidImageURL(s string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, ".svg") || strings.Contains(lower, "/svg/") {
		return false
	}
	if containsAny(fold(lower), rejectKeywords) {
		return false
	}
	return acceptedImageExt.MatchString(s)
}

// fold lowercases s and turns filename separators into spaces so multi-word
// keywords match regardless of how the file was named.
func fold(s string) string {
	return separatorFold.Replace(strings.ToLower(s))
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
