package refill

import "strings"

// noiseKeywords mark category members that are unlikely to be a single
// recognizable person with a portrait: lists, meta pages and occupation-only
// stubs.
var noiseKeywords = []string{
	"목록",
	"분류:",
	"틀:",
	"위키백과:",
	"동음이의",
	"가문",
	"왕조",
	"정치인",
	"군인",
	"선수",
	"외교관",
	"관료",
	"기업인",
	"성직자",
	"list of",
	"family",
}

// FilterDiscoveryTitles drops disambiguated titles, noise pages and
// duplicates, preserving order.
func FilterDiscoveryTitles(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" || strings.Contains(title, "(") {
			continue
		}
		if isNoise(title) {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
	}
	return out
}

func isNoise(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range noiseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
