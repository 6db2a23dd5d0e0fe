package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JakeFAU/portrait-quiz/internal/quiz"
)

type queryResponse struct {
	Query struct {
		Pages           []page   `json:"pages"`
		CategoryMembers []member `json:"categorymembers"`
	} `json:"query"`
}

type page struct {
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	Invalid   bool   `json:"invalid"`
	Extract   string `json:"extract"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	Images []struct {
		Title string `json:"title"`
	} `json:"images"`
	ImageInfo []struct {
		URL string `json:"url"`
	} `json:"imageinfo"`
}

type member struct {
	Title string `json:"title"`
	NS    int    `json:"ns"`
}

// Page is a rendered article.
type Page struct {
	URL  string
	HTML []byte
}

func (c *Client) firstPage(ctx context.Context, call string, params url.Values) (page, error) {
	body, err := c.query(ctx, call, params)
	if err != nil {
		return page{}, err
	}
	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return page{}, fmt.Errorf("decode %s: %w", call, err)
	}
	if len(resp.Query.Pages) == 0 {
		return page{}, fmt.Errorf("%s: %w", call, ErrMissingPage)
	}
	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid {
		return page{}, fmt.Errorf("%s %q: %w", call, p.Title, ErrMissingPage)
	}
	return p, nil
}

// PageThumbnail returns the curated page image scaled to size pixels, or ""
// when the page has none.
func (c *Client) PageThumbnail(ctx context.Context, title string, size int) (string, error) {
	p, err := c.firstPage(ctx, "pageimages", url.Values{
		"titles":      {title},
		"prop":        {"pageimages"},
		"piprop":      {"thumbnail"},
		"pithumbsize": {strconv.Itoa(size)},
		"redirects":   {"1"},
	})
	if err != nil {
		return "", err
	}
	if p.Thumbnail == nil {
		return "", nil
	}
	return p.Thumbnail.Source, nil
}

// Extract returns the plain-text introduction of a page.
func (c *Client) Extract(ctx context.Context, title string) (string, error) {
	p, err := c.firstPage(ctx, "extract", url.Values{
		"titles":      {title},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(p.Extract), nil
}

// Images lists the file titles attached to a page, at most limit of them.
func (c *Client) Images(ctx context.Context, title string, limit int) ([]string, error) {
	p, err := c.firstPage(ctx, "images", url.Values{
		"titles":    {title},
		"prop":      {"images"},
		"imlimit":   {strconv.Itoa(limit)},
		"redirects": {"1"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.Title != "" {
			out = append(out, img.Title)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ImageURL resolves a file title to its direct upload URL.
func (c *Client) ImageURL(ctx context.Context, fileTitle string) (string, error) {
	p, err := c.firstPage(ctx, "imageinfo", url.Values{
		"titles": {fileTitle},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
	})
	if err != nil {
		return "", err
	}
	if len(p.ImageInfo) == 0 {
		return "", nil
	}
	return p.ImageInfo[0].URL, nil
}

// CategoryMembers lists article titles in a category.
func (c *Client) CategoryMembers(ctx context.Context, category string, limit int) ([]string, error) {
	body, err := c.query(ctx, "categorymembers", url.Values{
		"list":        {"categorymembers"},
		"cmtitle":     {category},
		"cmlimit":     {strconv.Itoa(limit)},
		"cmnamespace": {"0"},
		"cmtype":      {"page"},
	})
	if err != nil {
		return nil, err
	}
	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode categorymembers: %w", err)
	}
	out := make([]string, 0, len(resp.Query.CategoryMembers))
	for _, m := range resp.Query.CategoryMembers {
		if m.NS == 0 && m.Title != "" {
			out = append(out, m.Title)
		}
	}
	return out, nil
}

// PageURL returns the page-render URL for a title.
func (c *Client) PageURL(title string) string {
	return c.cfg.PageURL + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// PageHTML fetches the rendered article.
func (c *Client) PageHTML(ctx context.Context, title string) (Page, error) {
	if c.pages == nil {
		return Page{}, fmt.Errorf("page fetcher is not configured")
	}
	target := c.PageURL(title)
	resp, err := c.pages.Fetch(ctx, quiz.FetchRequest{URL: target, Headers: c.Headers()})
	if err != nil {
		return Page{}, fmt.Errorf("fetch page %q: %w", title, err)
	}
	final := resp.URL
	if final == "" {
		final = target
	}
	return Page{URL: final, HTML: resp.Body}, nil
}
