package entity

import (
	"anvil-esign/internal/payload"
)

// Signer types accepted by the Etch API
const (
	SignerTypeEmail    = "email"
	SignerTypeEmbedded = "embedded"
)

// Document styling defaults
const (
	DefaultFontSize  = 14
	DefaultTextColor = "#000000"
)

// SignerField points a signer at a field of one of the packet files.
type SignerField struct {
	FileID  string `anvil:"file_id" validate:"required"`
	FieldID string `anvil:"field_id" validate:"required"`
}

// EtchSigner is a person that signs the packet. ID and RoutingOrder are
// filled in when the signer is attached to a packet.
type EtchSigner struct {
	Name            string         `anvil:"name" validate:"required"`
	Email           string         `anvil:"email" validate:"required"`
	Fields          []SignerField  `anvil:"fields" validate:"dive"`
	SignerType      string         `anvil:"signer_type" validate:"oneof=email embedded"`
	ID              string         `anvil:"id,omitzero"`
	RoutingOrder    int            `anvil:"routing_order,omitzero"`
	RedirectURL     string         `anvil:"redirect_url,omitzero"`
	AcceptEachField *bool          `anvil:"accept_each_field"`
	EnableEmails    []string       `anvil:"enable_emails,omitnil"`
	SignatureMode   string         `anvil:"signature_mode,omitzero" validate:"omitempty,oneof=draw text"`
	Extra           map[string]any `anvil:",remain"`
}

func (s *EtchSigner) SetDefaults() {
	if s.SignerType == "" {
		s.SignerType = SignerTypeEmail
	}
}

// Clone returns a copy that shares no slices or maps with s.
func (s *EtchSigner) Clone() *EtchSigner {
	c := *s
	c.Fields = append([]SignerField(nil), s.Fields...)
	if s.EnableEmails != nil {
		c.EnableEmails = append([]string{}, s.EnableEmails...)
	}
	if s.AcceptEachField != nil {
		v := *s.AcceptEachField
		c.AcceptEachField = &v
	}
	if s.Extra != nil {
		c.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// Rect is a field placement in PDF points.
type Rect struct {
	X      float64 `anvil:"x"`
	Y      float64 `anvil:"y"`
	Width  float64 `anvil:"width,omitzero"`
	Height float64 `anvil:"height,omitzero"`
}

// SignatureField places a signature field on a page. PageNum is zero based.
type SignatureField struct {
	ID      string `anvil:"id" validate:"required"`
	Type    string `anvil:"type" validate:"required"`
	PageNum int    `anvil:"page_num" validate:"gte=0"`
	Rect    Rect   `anvil:"rect"`
}

func (*SignatureField) markdownField() {}

// EtchFile is one of the documents attached to a packet:
// *DocumentUpload, *DocumentMarkup, *DocumentMarkdown or *CastReference.
type EtchFile interface {
	FileID() string
	etchFile()
}

// DocumentUpload is a PDF supplied by the caller. File is sent inline when
// it is a *payload.Base64Upload and as a multipart part otherwise.
type DocumentUpload struct {
	ID        string           `anvil:"id" validate:"required"`
	Title     string           `anvil:"title" validate:"required"`
	File      payload.Upload   `anvil:"file" validate:"-"`
	Fields    []SignatureField `anvil:"fields" validate:"dive"`
	FontSize  int              `anvil:"font_size"`
	TextColor string           `anvil:"text_color"`
	Extra     map[string]any   `anvil:",remain"`
}

func (d *DocumentUpload) FileID() string { return d.ID }
func (*DocumentUpload) etchFile()        {}

func (d *DocumentUpload) SetDefaults() {
	setStyleDefaults(&d.FontSize, &d.TextColor)
	if inline, ok := d.File.(*payload.Base64Upload); ok {
		inline.SetDefaults()
	}
}

// Markup is the HTML and CSS source of a generated document.
type Markup struct {
	HTML string `anvil:"html" validate:"required"`
	CSS  string `anvil:"css,omitzero"`
}

// DocumentMarkup is a document rendered from HTML and CSS.
type DocumentMarkup struct {
	ID        string           `anvil:"id" validate:"required"`
	Filename  string           `anvil:"filename" validate:"required"`
	Markup    Markup           `anvil:"markup"`
	Fields    []SignatureField `anvil:"fields,omitnil" validate:"dive"`
	Title     string           `anvil:"title,omitzero"`
	FontSize  int              `anvil:"font_size"`
	TextColor string           `anvil:"text_color"`
	Extra     map[string]any   `anvil:",remain"`
}

func (d *DocumentMarkup) FileID() string { return d.ID }
func (*DocumentMarkup) etchFile()        {}

func (d *DocumentMarkup) SetDefaults() {
	setStyleDefaults(&d.FontSize, &d.TextColor)
}

// MarkdownField is an entry of a markdown document: a *SignatureField or
// a *MarkdownContent block.
type MarkdownField interface {
	markdownField()
}

// MarkdownContent is a block of verbatim content in a markdown document.
type MarkdownContent struct {
	Label     string         `anvil:"label,omitzero"`
	Heading   string         `anvil:"heading,omitzero"`
	Content   string         `anvil:"content,omitzero"`
	Table     *MarkdownTable `anvil:"table"`
	FontSize  int            `anvil:"font_size"`
	TextColor string         `anvil:"text_color"`
}

func (*MarkdownContent) markdownField() {}

func (c *MarkdownContent) SetDefaults() {
	setStyleDefaults(&c.FontSize, &c.TextColor)
	if c.Table != nil {
		c.Table.SetDefaults()
	}
}

type TableColumnAlignment struct {
	Align string `anvil:"align,omitzero" validate:"omitempty,oneof=left center right"`
	Width string `anvil:"width,omitzero"`
}

type MarkdownTable struct {
	Rows            [][]string             `anvil:"rows" validate:"required"`
	FirstRowHeaders *bool                  `anvil:"first_row_headers"`
	RowGridLines    *bool                  `anvil:"row_grid_lines"`
	ColumnGridLines *bool                  `anvil:"column_grid_lines"`
	VerticalAlign   string                 `anvil:"vertical_align,omitzero" validate:"omitempty,oneof=top center bottom"`
	ColumnOptions   []TableColumnAlignment `anvil:"column_options,omitnil" validate:"dive"`
}

func (t *MarkdownTable) SetDefaults() {
	if t.RowGridLines == nil {
		t.RowGridLines = Bool(true)
	}
	if t.ColumnGridLines == nil {
		t.ColumnGridLines = Bool(false)
	}
	if t.VerticalAlign == "" {
		t.VerticalAlign = "center"
	}
}

// DocumentMarkdown is a document generated from markdown content blocks.
type DocumentMarkdown struct {
	ID        string          `anvil:"id" validate:"required"`
	Filename  string          `anvil:"filename" validate:"required"`
	Fields    []MarkdownField `anvil:"fields,omitnil"`
	Title     string          `anvil:"title,omitzero"`
	FontSize  int             `anvil:"font_size"`
	TextColor string          `anvil:"text_color"`
	Extra     map[string]any  `anvil:",remain"`
}

func (d *DocumentMarkdown) FileID() string { return d.ID }
func (*DocumentMarkdown) etchFile()        {}

func (d *DocumentMarkdown) SetDefaults() {
	setStyleDefaults(&d.FontSize, &d.TextColor)
	for _, f := range d.Fields {
		if c, ok := f.(*MarkdownContent); ok {
			c.SetDefaults()
		}
	}
}

// CastReference attaches an existing template by its eid.
type CastReference struct {
	ID      string `anvil:"id" validate:"required"`
	CastEID string `anvil:"cast_eid" validate:"required"`
}

func (c *CastReference) FileID() string { return c.ID }
func (*CastReference) etchFile()        {}

// CloneFile copies f deep enough that applying defaults to the copy leaves
// f unchanged. Upload handles and paths are shared.
func CloneFile(f EtchFile) EtchFile {
	switch d := f.(type) {
	case *DocumentUpload:
		c := *d
		if inline, ok := d.File.(*payload.Base64Upload); ok && inline != nil {
			u := *inline
			c.File = &u
		}
		return &c
	case *DocumentMarkup:
		c := *d
		return &c
	case *DocumentMarkdown:
		c := *d
		if d.Fields != nil {
			c.Fields = make([]MarkdownField, len(d.Fields))
			for i, field := range d.Fields {
				if content, ok := field.(*MarkdownContent); ok && content != nil {
					cc := *content
					if content.Table != nil {
						table := *content.Table
						cc.Table = &table
					}
					field = &cc
				}
				c.Fields[i] = field
			}
		}
		return &c
	case *CastReference:
		c := *d
		return &c
	}
	return f
}

// EtchFileData carries the fill payloads keyed by file id.
type EtchFileData struct {
	Payloads map[string]*FillPDFPayload `anvil:"payloads" validate:"dive"`
}

// EtchPacketPayload is the variables document of the createEtchPacket
// mutation.
type EtchPacketPayload struct {
	Name                           string         `anvil:"name" validate:"required"`
	Signers                        []*EtchSigner  `anvil:"signers" validate:"dive"`
	Files                          []EtchFile     `anvil:"files" validate:"dive"`
	SignatureEmailSubject          string         `anvil:"signature_email_subject,omitzero"`
	SignatureEmailBody             string         `anvil:"signature_email_body,omitzero"`
	IsDraft                        *bool          `anvil:"is_draft"`
	IsTest                         *bool          `anvil:"is_test"`
	MergePDFs                      *bool          `anvil:"merge_pdfs"`
	Data                           *EtchFileData  `anvil:"data"`
	SignaturePageOptions           map[string]any `anvil:"signature_page_options,omitnil"`
	WebhookURL                     string         `anvil:"webhook_url,omitzero"`
	ReplyToName                    string         `anvil:"reply_to_name,omitzero"`
	ReplyToEmail                   string         `anvil:"reply_to_email,omitzero"`
	EnableEmails                   any            `anvil:"enable_emails"`
	CreateCastTemplatesFromUploads *bool          `anvil:"create_cast_templates_from_uploads"`
	DuplicateCasts                 *bool          `anvil:"duplicate_casts"`
	Extra                          map[string]any `anvil:",remain"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

func setStyleDefaults(fontSize *int, textColor *string) {
	if *fontSize == 0 {
		*fontSize = DefaultFontSize
	}
	if *textColor == "" {
		*textColor = DefaultTextColor
	}
}
