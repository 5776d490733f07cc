package entity

// EmbeddedLogo is the logo shown on generated PDFs.
type EmbeddedLogo struct {
	Src       string `anvil:"src" validate:"required"`
	MaxWidth  int    `anvil:"max_width,omitzero"`
	MaxHeight int    `anvil:"max_height,omitzero"`
}

// FillPDFPayload fills a PDF template. Data is an object keyed by field
// alias, or a list of such objects; an empty object is rejected.
type FillPDFPayload struct {
	Data      any            `anvil:"data" validate:"required"`
	Title     string         `anvil:"title,omitzero"`
	FontSize  int            `anvil:"font_size,omitzero"`
	TextColor string         `anvil:"text_color,omitzero"`
	Extra     map[string]any `anvil:",remain"`
}

// PDF generation types
const (
	GenerateTypeMarkdown = "markdown"
	GenerateTypeHTML     = "html"
)

// GeneratePDFPayload generates a PDF from markdown blocks or HTML/CSS.
type GeneratePDFPayload struct {
	Data       any            `anvil:"data" validate:"required"`
	Logo       *EmbeddedLogo  `anvil:"logo"`
	Title      string         `anvil:"title,omitzero"`
	Type       string         `anvil:"type" validate:"oneof=markdown html"`
	Page       map[string]any `anvil:"page,omitnil"`
	FontSize   int            `anvil:"font_size,omitzero"`
	FontFamily string         `anvil:"font_family,omitzero"`
	TextColor  string         `anvil:"text_color,omitzero"`
	Extra      map[string]any `anvil:",remain"`
}

func (p *GeneratePDFPayload) SetDefaults() {
	if p.Type == "" {
		p.Type = GenerateTypeMarkdown
	}
}
