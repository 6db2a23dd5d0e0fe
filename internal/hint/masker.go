// Package hint redacts name-revealing text from a biography excerpt so the
// excerpt can be shown as a quiz hint.
package hint

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to every hint.
const Ellipsis = "..."

var (
	parenContent  = regexp.MustCompile(`\(([^)]*)\)`)
	parenStrip    = regexp.MustCompile(`\s*\([^)]*\)`)
	whitespace    = regexp.MustCompile(`\s+`)
	latinLeakRun  = regexp.MustCompile(`[[:alnum:][:punct:]]{2,}`)
	tokenSplitter = func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '/' }
)

// Config controls masking output.
type Config struct {
	MaxRunes int
	Marker   string
}

// Masker is stateless and safe for concurrent use.
type Masker struct {
	maxRunes int
	marker   string
}

// New builds a Masker.
func New(cfg Config) *Masker {
	if cfg.MaxRunes <= 0 {
		cfg.MaxRunes = 120
	}
	if cfg.Marker == "" {
		cfg.Marker = "○○"
	}
	return &Masker{maxRunes: cfg.MaxRunes, marker: cfg.Marker}
}

// Mask redacts title-derived words from extract, collapses leftover Latin
// runs, truncates to the configured rune budget and appends Ellipsis.
// It is a best-effort filter against trivial answer leakage.
func (m *Masker) Mask(title, extract string) string {
	text := strings.TrimSpace(whitespace.ReplaceAllString(extract, " "))
	base := strings.TrimSpace(whitespace.ReplaceAllString(parenStrip.ReplaceAllString(title, " "), " "))

	text = m.replaceFold(text, base)
	for _, tok := range parentheticalTokens(title) {
		text = m.replaceFold(text, tok)
	}
	for _, needle := range nameFragments(base) {
		text = m.replaceFold(text, needle)
	}
	text = latinLeakRun.ReplaceAllLiteralString(text, m.marker)

	return Truncate(text, m.maxRunes) + Ellipsis
}

func (m *Masker) replaceFold(text, needle string) string {
	if needle == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(needle))
	return re.ReplaceAllLiteralString(text, m.marker)
}

func parentheticalTokens(title string) []string {
	var out []string
	for _, match := range parenContent.FindAllStringSubmatch(title, -1) {
		for _, tok := range strings.FieldsFunc(match[1], tokenSplitter) {
			if utf8.RuneCountInString(tok) > 1 {
				out = append(out, tok)
			}
		}
	}
	return out
}

// nameFragments returns base-name words of two or more runes plus every
// two-rune window of words with three or more, longest first so whole words
// are replaced before their pieces.
func nameFragments(base string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	for _, word := range strings.Fields(base) {
		runes := []rune(word)
		if len(runes) < 2 {
			continue
		}
		add(word)
		if len(runes) >= 3 {
			for i := 0; i+2 <= len(runes); i++ {
				add(string(runes[i : i+2]))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
