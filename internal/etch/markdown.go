package etch

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"anvil-esign/internal/domain/entity"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
		)
	})
	return markdown
}

// MarkupFromMarkdown renders markdown source to the HTML of a markup
// document. Raw HTML in the source is dropped.
func MarkupFromMarkdown(source, css string) (entity.Markup, error) {
	var buf bytes.Buffer
	if err := markdownRenderer().Convert([]byte(source), &buf); err != nil {
		return entity.Markup{}, fmt.Errorf("failed to render markdown: %w", err)
	}
	return entity.Markup{HTML: buf.String(), CSS: css}, nil
}

// NewMarkdownDocument builds a markup document from markdown source.
func NewMarkdownDocument(id, filename, source, css string, fields ...entity.SignatureField) (*entity.DocumentMarkup, error) {
	markup, err := MarkupFromMarkdown(source, css)
	if err != nil {
		return nil, err
	}
	return &entity.DocumentMarkup{
		ID:       id,
		Filename: filename,
		Markup:   markup,
		Fields:   fields,
	}, nil
}
