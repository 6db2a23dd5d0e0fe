package portrait

import (
	"regexp"
	"strings"
)

// rejectKeywords disqualify a URL or filename outright. Matching happens
// after separators are folded to spaces and the input is lowercased.
var rejectKeywords = []string{
	"flag",
	"emblem",
	"seal",
	"coat of arms",
	"logo",
	"map",
	"signature",
	"memorial",
	"icon",
}

// nonPortraitKeywords disqualify an attached media filename.
var nonPortraitKeywords = []string{
	"map",
	"flag",
	"icon",
	"logo",
	"signature",
	"autograph",
	"book",
	"cover",
	"chart",
	"diagram",
	"coat of arms",
	"emblem",
	"seal",
	"grave",
	"tomb",
	"monument",
	"memorial",
	"statue",
	"museum",
}

// portraitKeywords promote an attached media filename ahead of neutral files.
var portraitKeywords = []string{
	"portrait",
	"photo",
	"face",
	"profile",
	"bust",
}

// rejectedFileExtensions are never photographs of a person.
var rejectedFileExtensions = []string{".svg", ".gif"}

// spacerMarkers identify layout placeholder images in rendered pages.
var spacerMarkers = []string{"spacer.gif", "blank.gif", "pixel.gif", "transparent.gif"}

// alternateSpellings maps a lowercase localized name fragment to the
// romanized spelling commonly used in media filenames.
var alternateSpellings = []struct {
	Fragment string
	Spelling string
}{
	{"모차르트", "mozart"},
	{"베토벤", "beethoven"},
	{"피카소", "picasso"},
	{"간디", "gandhi"},
	{"고흐", "gogh"},
	{"아인슈타인", "einstein"},
	{"나폴레옹", "napoleon"},
	{"링컨", "lincoln"},
	{"셰익스피어", "shakespeare"},
	{"뉴턴", "newton"},
	{"다윈", "darwin"},
	{"처칠", "churchill"},
	{"퀴리", "curie"},
	{"에디슨", "edison"},
	{"테슬라", "tesla"},
	{"만델라", "mandela"},
	{"다 빈치", "da_vinci"},
	{"바흐", "bach"},
	{"쇼팽", "chopin"},
	{"세종", "sejong"},
	{"이순신", "yi_sun-sin"},
}

var (
	acceptedImageExt = regexp.MustCompile(`(?i)\.(jpe?g|png|webp)(\?.*)?$`)
	parenthetical    = regexp.MustCompile(`\s*\([^)]*\)`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	separatorFold    = strings.NewReplacer("_", " ", "-", " ", "%20", " ")
)
