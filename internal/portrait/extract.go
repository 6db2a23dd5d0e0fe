package portrait

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractPageImages returns the og:image URL and the first infobox image
// from a rendered article, in that order. Relative URLs are resolved against
// pageURL and layout spacers are dropped.
func ExtractPageImages(html []byte, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var out []string
	add := func(raw string) {
		u := normalizeImageURL(strings.TrimSpace(raw), pageURL)
		if u == "" || isSpacer(u) {
			return
		}
		for _, existing := range out {
			if existing == u {
				return
			}
		}
		out = append(out, u)
	}

	if og, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		add(og)
	}
	if src, ok := doc.Find("table.infobox").First().Find("img").First().Attr("src"); ok {
		add(src)
	}
	return out, nil
}

func normalizeImageURL(raw, pageURL string) string {
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		base, err := url.Parse(pageURL)
		if err != nil || base.Host == "" {
			return ""
		}
		scheme := base.Scheme
		if scheme == "" {
			scheme = "https"
		}
		return scheme + "://" + base.Host + raw
	default:
		return raw
	}
}

func isSpacer(u string) bool {
	return containsAny(strings.ToLower(u), spacerMarkers)
}
