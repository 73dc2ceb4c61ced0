package site

import (
	"context"

	"github.com/a-h/templ"

	"github.com/conneroisu/folio/internal/content"
	ferrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/markdown"
)

// ExcerptLength is the longest excerpt, in runes, shown on listings.
const ExcerptLength = 200

// Filter selects the entries of an index that a listing shows.
type Filter func(idx *content.Index) []content.Entry

// All keeps every entry.
func All(idx *content.Index) []content.Entry {
	return idx.Entries()
}

// WithTag keeps entries tagged exactly tag.
func WithTag(tag string) Filter {
	return func(idx *content.Index) []content.Entry {
		return idx.WithTag(tag)
	}
}

// Pipeline loads, renders and presents content. Nothing is cached: each call
// reads the index and bodies it needs from the store.
type Pipeline struct {
	store    *content.Store
	renderer *markdown.Renderer
	logger   logging.Logger
}

// NewPipeline creates a pipeline over store.
func NewPipeline(store *content.Store, renderer *markdown.Renderer, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		store:    store,
		renderer: renderer,
		logger:   logger.WithComponent("pipeline"),
	}
}

// Detail renders the entry id of section. An unknown id yields a NotFound
// error.
func (p *Pipeline) Detail(ctx context.Context, section Section, id string) (templ.Component, error) {
	idx, err := p.store.LoadIndex(section.Category)
	if err != nil {
		return nil, err
	}

	entry, err := idx.Find(id)
	if err != nil {
		return nil, err
	}

	doc, err := p.document(ctx, section, entry)
	if err != nil {
		return nil, err
	}
	return section.Page(doc), nil
}

// Listing renders the entries of section chosen by filter, in index order,
// under heading. A failure on any entry fails the whole listing.
func (p *Pipeline) Listing(ctx context.Context, section Section, heading string, filter Filter) (templ.Component, error) {
	idx, err := p.store.LoadIndex(section.Category)
	if err != nil {
		return nil, err
	}

	if filter == nil {
		filter = All
	}
	entries := filter(idx)

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := p.document(ctx, section, entry)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	p.logger.Debug(ctx, "listing rendered",
		"category", section.Name(),
		"entries", len(docs),
		"total", idx.Len())

	return section.List(heading, docs), nil
}

func (p *Pipeline) document(ctx context.Context, section Section, entry content.Entry) (Document, error) {
	body, err := p.store.LoadBody(section.Category, entry)
	if err != nil {
		return Document{}, err
	}

	rendered, err := p.renderer.Render(body.Markdown, section.Trust)
	if err != nil {
		return Document{}, ferrors.WrapRender(err, ferrors.ErrCodeMarkdown, "rendering body").
			WithCategory(section.Name()).
			WithPath(section.Category.BodyPath(entry)).
			WithContext("id", entry.ID)
	}

	excerpt := body.Summary
	if excerpt == "" {
		excerpt = markdown.Excerpt(rendered, ExcerptLength)
	}

	p.logger.Debug(ctx, "rendered entry",
		"category", section.Name(),
		"id", entry.ID,
		"trust", section.Trust.String())

	return Document{Entry: entry, HTML: rendered, Excerpt: excerpt}, nil
}
