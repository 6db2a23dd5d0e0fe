package portrait

import (
	"sort"
	"strings"
)

// Filename ranks; lower sorts first.
const (
	rankPortrait = iota
	rankAlias
	rankNeutral
)

var compactReplacer = strings.NewReplacer(" ", "", "\t", "", "-", "", "_", "")

// IsHumanPhoto reports whether an attached media filename could be a
// photograph of the person. Files naming a non-portrait subject and vector or
// animated formats are rejected; everything else is kept.
func IsHumanPhoto(filename string, aliases AliasSet) bool {
	_, ok := classify(filename, aliases)
	return ok
}

func classify(filename string, aliases AliasSet) (int, bool) {
	if filename == "" {
		return 0, false
	}
	lower := strings.ToLower(filename)
	for _, ext := range rejectedFileExtensions {
		if strings.HasSuffix(lower, ext) {
			return 0, false
		}
	}
	folded := fold(lower)
	if containsAny(folded, nonPortraitKeywords) {
		return 0, false
	}
	if containsAny(folded, portraitKeywords) {
		return rankPortrait, true
	}
	compactFile := compactReplacer.Replace(lower)
	for _, alias := range aliases {
		compactAlias := compactReplacer.Replace(alias)
		if compactAlias != "" && strings.Contains(compactFile, compactAlias) {
			return rankAlias, true
		}
	}
	return rankNeutral, true
}

// RankFilenames drops filenames that cannot be portraits and orders the
// rest: portrait keywords first, then alias matches, then neutral files.
// Ties keep their original order.
func RankFilenames(filenames []string, aliases AliasSet) []string {
	type ranked struct {
		name string
		rank int
	}
	kept := make([]ranked, 0, len(filenames))
	for _, name := range filenames {
		if rank, ok := classify(name, aliases); ok {
			kept = append(kept, ranked{name: name, rank: rank})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].rank < kept[j].rank })
	out := make([]string, len(kept))
	for i, k := range kept {
		out[i] = k.name
	}
	return out
}
