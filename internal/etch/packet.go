// Package etch builds createEtchPacket payloads.
package etch

import (
	"fmt"

	"github.com/google/uuid"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/payload"
)

// newID generates signer ids. Tests replace it.
var newID = func(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Option configures a Packet.
type Option func(*Packet)

func WithSignatureEmail(subject, body string) Option {
	return func(p *Packet) {
		p.signatureEmailSubject = subject
		p.signatureEmailBody = body
	}
}

func WithDraft(draft bool) Option {
	return func(p *Packet) { p.isDraft = draft }
}

func WithTest(test bool) Option {
	return func(p *Packet) { p.isTest = test }
}

func WithMergePDFs(merge bool) Option {
	return func(p *Packet) { p.mergePDFs = entity.Bool(merge) }
}

func WithWebhookURL(url string) Option {
	return func(p *Packet) { p.webhookURL = url }
}

func WithReplyTo(name, email string) Option {
	return func(p *Packet) {
		p.replyToName = name
		p.replyToEmail = email
	}
}

func WithSignaturePageOptions(opts map[string]any) Option {
	return func(p *Packet) { p.signaturePageOptions = opts }
}

// WithEnableEmails takes true, false, or a list of email kinds.
func WithEnableEmails(v any) Option {
	return func(p *Packet) { p.enableEmails = v }
}

func WithCreateCastTemplatesFromUploads(v bool) Option {
	return func(p *Packet) { p.createCastTemplatesFromUploads = entity.Bool(v) }
}

func WithDuplicateCasts(v bool) Option {
	return func(p *Packet) { p.duplicateCasts = entity.Bool(v) }
}

// WithExtra adds top level fields sent as given.
func WithExtra(extra map[string]any) Option {
	return func(p *Packet) { p.extra = extra }
}

// Packet collects signers, files and fill payloads for one e-signature
// request. It is not safe for concurrent use.
type Packet struct {
	name                           string
	signatureEmailSubject          string
	signatureEmailBody             string
	signaturePageOptions           map[string]any
	isDraft                        bool
	isTest                         bool
	mergePDFs                      *bool
	webhookURL                     string
	replyToName                    string
	replyToEmail                   string
	enableEmails                   any
	createCastTemplatesFromUploads *bool
	duplicateCasts                 *bool
	extra                          map[string]any

	signers      []*entity.EtchSigner
	files        []entity.EtchFile
	filePayloads map[string]*entity.FillPDFPayload

	override *entity.EtchPacketPayload
}

// NewPacket starts a packet. Packets are test packets unless WithTest(false)
// is given.
func NewPacket(name string, opts ...Option) *Packet {
	p := &Packet{
		name:         name,
		isTest:       true,
		filePayloads: make(map[string]*entity.FillPDFPayload),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromPayload wraps a payload built by the caller. Assemble returns it as
// is, without defaults or validation.
func FromPayload(override *entity.EtchPacketPayload) *Packet {
	p := NewPacket("")
	p.override = override
	return p
}

// Name returns the packet name, or the override's name.
func (p *Packet) Name() string {
	if p.override != nil {
		return p.override.Name
	}
	return p.name
}

// AddSigner attaches a signer given as *entity.EtchSigner or as map data.
// A missing id is generated and a missing routing order is set to one more
// than the highest routing order of the signers attached so far. Both are
// written to the signer.
func (p *Packet) AddSigner(signer any) error {
	var s *entity.EtchSigner
	switch v := signer.(type) {
	case *entity.EtchSigner:
		if v == nil {
			return &entity.ValidationError{Field: "signer", Message: "is required"}
		}
		s = v
	case entity.EtchSigner:
		s = &v
	case map[string]any:
		decoded, err := entity.DecodeSigner(v)
		if err != nil {
			return err
		}
		s = decoded
	default:
		return &entity.ValidationError{
			Field:   "signer",
			Message: fmt.Sprintf("must be a signer or a map, got %T", signer),
		}
	}

	s.SetDefaults()
	if err := entity.Validate(s); err != nil {
		return err
	}

	if s.ID == "" {
		s.ID = newID("signer")
	}
	if s.RoutingOrder == 0 {
		s.RoutingOrder = p.maxRoutingOrder() + 1
	}

	p.signers = append(p.signers, s)
	return nil
}

func (p *Packet) maxRoutingOrder() int {
	max := 0
	for _, s := range p.signers {
		if s.RoutingOrder > max {
			max = s.RoutingOrder
		}
	}
	return max
}

// AddFile attaches a document. File ids must be unique within the packet.
func (p *Packet) AddFile(file entity.EtchFile) error {
	if file == nil {
		return &entity.ValidationError{Field: "file", Message: "is required"}
	}
	id := file.FileID()
	if id == "" {
		return &entity.ValidationError{Field: "file.id", Message: "is required"}
	}
	if p.hasFile(id) {
		return &entity.ReferenceError{FileID: id, Message: "was already added to the packet"}
	}
	p.files = append(p.files, file)
	return nil
}

// AddFilePayload records fill data for an already attached file.
func (p *Packet) AddFilePayload(fileID string, fill *entity.FillPDFPayload) error {
	if !p.hasFile(fileID) {
		return &entity.ReferenceError{
			FileID:  fileID,
			Message: "was not added as a file; add the file before its fill payload",
		}
	}
	p.filePayloads[fileID] = fill
	return nil
}

func (p *Packet) hasFile(id string) bool {
	for _, f := range p.files {
		if f != nil && f.FileID() == id {
			return true
		}
	}
	return false
}

// Signers returns the attached signers in attach order.
func (p *Packet) Signers() []*entity.EtchSigner {
	return append([]*entity.EtchSigner(nil), p.signers...)
}

// Files returns the attached files in attach order.
func (p *Packet) Files() []entity.EtchFile {
	return append([]entity.EtchFile(nil), p.files...)
}

// Assemble builds the createEtchPacket variables. It also returns, in file
// order, the uploads that have to go out as multipart parts; inline base64
// uploads stay in the payload and are not listed.
func (p *Packet) Assemble() (*entity.EtchPacketPayload, []payload.Upload, error) {
	if p.override != nil {
		return p.override, pendingUploads(p.override.Files), nil
	}

	if p.name == "" {
		return nil, nil, &entity.ValidationError{Field: "name", Message: "is required"}
	}

	for id := range p.filePayloads {
		if !p.hasFile(id) {
			return nil, nil, &entity.ReferenceError{
				FileID:  id,
				Message: "has a fill payload but was not added as a file",
			}
		}
	}

	signers := make([]*entity.EtchSigner, len(p.signers))
	for i, s := range p.signers {
		signers[i] = s.Clone()
	}

	files := make([]entity.EtchFile, len(p.files))
	for i, f := range p.files {
		files[i] = entity.CloneFile(f)
		if d, ok := files[i].(payload.Defaulter); ok {
			d.SetDefaults()
		}
	}

	payloads := make(map[string]*entity.FillPDFPayload, len(p.filePayloads))
	for id, fill := range p.filePayloads {
		payloads[id] = fill
	}

	pageOptions := p.signaturePageOptions
	if pageOptions == nil {
		pageOptions = map[string]any{}
	}

	out := &entity.EtchPacketPayload{
		Name:                           p.name,
		Signers:                        signers,
		Files:                          files,
		SignatureEmailSubject:          p.signatureEmailSubject,
		SignatureEmailBody:             p.signatureEmailBody,
		IsDraft:                        entity.Bool(p.isDraft),
		IsTest:                         entity.Bool(p.isTest),
		MergePDFs:                      p.mergePDFs,
		Data:                           &entity.EtchFileData{Payloads: payloads},
		SignaturePageOptions:           pageOptions,
		WebhookURL:                     p.webhookURL,
		ReplyToName:                    p.replyToName,
		ReplyToEmail:                   p.replyToEmail,
		EnableEmails:                   p.enableEmails,
		CreateCastTemplatesFromUploads: p.createCastTemplatesFromUploads,
		DuplicateCasts:                 p.duplicateCasts,
		Extra:                          p.extra,
	}
	if err := entity.Validate(out); err != nil {
		return nil, nil, err
	}
	return out, pendingUploads(files), nil
}

func pendingUploads(files []entity.EtchFile) []payload.Upload {
	var pending []payload.Upload
	for _, f := range files {
		doc, ok := f.(*entity.DocumentUpload)
		if !ok || doc.File == nil {
			continue
		}
		switch u := doc.File.(type) {
		case *payload.FileHandle, payload.FilePath:
			pending = append(pending, u)
		}
	}
	return pending
}
