package portrait

import (
	"context"
	"fmt"

	"github.com/JakeFAU/portrait-quiz/internal/wiki"
)

// Request is one resolution attempt.
type Request struct {
	Title   string
	Aliases AliasSet
}

// Candidate is a proposed image URL and where it came from.
type Candidate struct {
	URL    string
	Origin string
}

// Strategy proposes image candidates for a title. emit returns false when
// the caller has accepted a candidate and no more are wanted.
type Strategy interface {
	Name() string
	Candidates(ctx context.Context, req Request, emit func(Candidate) bool) error
}

// ThumbnailSource returns the curated page image.
type ThumbnailSource interface {
	PageThumbnail(ctx context.Context, title string, size int) (string, error)
}

// PageSource returns rendered article HTML.
type PageSource interface {
	PageHTML(ctx context.Context, title string) (wiki.Page, error)
}

// MediaSource lists attached files and resolves them to direct URLs.
type MediaSource interface {
	Images(ctx context.Context, title string, limit int) ([]string, error)
	ImageURL(ctx context.Context, fileTitle string) (string, error)
}

// Encyclopedia is everything the standard strategies need.
type Encyclopedia interface {
	ThumbnailSource
	PageSource
	MediaSource
}

// StandardStrategies returns the three strategies in priority order.
func StandardStrategies(api Encyclopedia, thumbSize, imageListLimit int) []Strategy {
	return []Strategy{
		NewThumbnailStrategy(api, thumbSize),
		NewDocumentStrategy(api),
		NewImageListStrategy(api, imageListLimit),
	}
}

// ThumbnailStrategy asks the page-image API for the article's lead image.
type ThumbnailStrategy struct {
	api  ThumbnailSource
	size int
}

// NewThumbnailStrategy builds a ThumbnailStrategy.
func NewThumbnailStrategy(api ThumbnailSource, size int) *ThumbnailStrategy {
	if size <= 0 {
		size = 600
	}
	return &ThumbnailStrategy{api: api, size: size}
}

// Name implements Strategy.
func (*ThumbnailStrategy) Name() string { return "thumbnail" }

// Candidates implements Strategy.
func (s *ThumbnailStrategy) Candidates(ctx context.Context, req Request, emit func(Candidate) bool) error {
	src, err := s.api.PageThumbnail(ctx, req.Title, s.size)
	if err != nil {
		return fmt.Errorf("page thumbnail: %w", err)
	}
	if IsValidImageURL(src) {
		emit(Candidate{URL: src, Origin: "pageimages"})
	}
	return nil
}

// DocumentStrategy scrapes the rendered article for og:image and the
// infobox picture.
type DocumentStrategy struct {
	pages PageSource
}

// NewDocumentStrategy builds a DocumentStrategy.
func NewDocumentStrategy(pages PageSource) *DocumentStrategy {
	return &DocumentStrategy{pages: pages}
}

// Name implements Strategy.
func (*DocumentStrategy) Name() string { return "document" }

// Candidates implements Strategy.
func (s *DocumentStrategy) Candidates(ctx context.Context, req Request, emit func(Candidate) bool) error {
	page, err := s.pages.PageHTML(ctx, req.Title)
	if err != nil {
		return fmt.Errorf("page html: %w", err)
	}
	urls, err := ExtractPageImages(page.HTML, page.URL)
	if err != nil {
		return err
	}
	for _, u := range urls {
		if !IsValidImageURL(u) {
			continue
		}
		if !emit(Candidate{URL: u, Origin: "document"}) {
			return nil
		}
	}
	return nil
}

// ImageListStrategy walks the article's attached media, best-looking
// filenames first.
type ImageListStrategy struct {
	media MediaSource
	limit int
}

// NewImageListStrategy builds an ImageListStrategy bounded to limit files.
func NewImageListStrategy(media MediaSource, limit int) *ImageListStrategy {
	if limit <= 0 {
		limit = 50
	}
	return &ImageListStrategy{media: media, limit: limit}
}

// Name implements Strategy.
func (*ImageListStrategy) Name() string { return "imagelist" }

// Candidates implements Strategy.
func (s *ImageListStrategy) Candidates(ctx context.Context, req Request, emit func(Candidate) bool) error {
	files, err := s.media.Images(ctx, req.Title, s.limit)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	var lastErr error
	for _, file := range RankFilenames(files, req.Aliases) {
		if err := ctx.Err(); err != nil {
			return err
		}
		direct, err := s.media.ImageURL(ctx, file)
		if err != nil {
			lastErr = fmt.Errorf("image info %q: %w", file, err)
			continue
		}
		if !IsValidImageURL(direct) {
			continue
		}
		if !emit(Candidate{URL: direct, Origin: file}) {
			return nil
		}
	}
	return lastErr
}
