package portrait

import "strings"

// AliasSet is an ordered, duplicate-free list of name variants.
type AliasSet []string

// Contains reports whether alias is in the set.
func (a AliasSet) Contains(alias string) bool {
	for _, v := range a {
		if v == alias {
			return true
		}
	}
	return false
}

// BaseName strips parenthetical disambiguation from a title and collapses
// whitespace. Case is preserved.
func BaseName(title string) string {
	base := parenthetical.ReplaceAllString(title, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(base, " "))
}

// MakeAliases derives lowercase name variants from a display title: the base
// name, its underscore and hyphen joined forms, and any known romanized
// spellings. The result always contains the lowercase base name.
func MakeAliases(title string) AliasSet {
	base := strings.ToLower(BaseName(title))
	set := make(AliasSet, 0, 4)
	add := func(v string) {
		if !set.Contains(v) {
			set = append(set, v)
		}
	}

	add(base)
	add(strings.ReplaceAll(base, " ", "_"))
	add(strings.ReplaceAll(base, " ", "-"))
	for _, alt := range alternateSpellings {
		if strings.Contains(base, alt.Fragment) {
			add(alt.Spelling)
		}
	}
	return set
}
