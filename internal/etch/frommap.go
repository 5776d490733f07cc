package etch

import (
	"sort"

	"anvil-esign/internal/domain/entity"
)

type packetInput struct {
	Name                           string                            `anvil:"name"`
	SignatureEmailSubject          string                            `anvil:"signature_email_subject"`
	SignatureEmailBody             string                            `anvil:"signature_email_body"`
	SignaturePageOptions           map[string]any                    `anvil:"signature_page_options"`
	IsDraft                        *bool                             `anvil:"is_draft"`
	IsTest                         *bool                             `anvil:"is_test"`
	MergePDFs                      *bool                             `anvil:"merge_pdfs"`
	WebhookURL                     string                            `anvil:"webhook_url"`
	ReplyToName                    string                            `anvil:"reply_to_name"`
	ReplyToEmail                   string                            `anvil:"reply_to_email"`
	EnableEmails                   any                               `anvil:"enable_emails"`
	CreateCastTemplatesFromUploads *bool                             `anvil:"create_cast_templates_from_uploads"`
	DuplicateCasts                 *bool                             `anvil:"duplicate_casts"`
	FilePayloads                   map[string]*entity.FillPDFPayload `anvil:"file_payloads"`
	Data                           *entity.EtchFileData              `anvil:"data"`
	Signers                        []*entity.EtchSigner              `anvil:"signers"`
	Files                          []entity.EtchFile                 `anvil:"files"`
	Extra                          map[string]any                    `anvil:",remain"`
}

// FromMap builds a packet from map data such as a decoded JSON document.
// Keys may be snake_case or camelCase. Fill payloads are accepted under
// file_payloads or in the wire shape data.payloads. Signers and files go
// through AddSigner and AddFile, so the same defaults and checks apply.
func FromMap(m map[string]any) (*Packet, error) {
	var in packetInput
	if err := entity.Decode(m, &in); err != nil {
		return nil, err
	}

	opts := []Option{
		WithSignatureEmail(in.SignatureEmailSubject, in.SignatureEmailBody),
		WithSignaturePageOptions(in.SignaturePageOptions),
		WithWebhookURL(in.WebhookURL),
		WithReplyTo(in.ReplyToName, in.ReplyToEmail),
		WithEnableEmails(in.EnableEmails),
	}
	if in.IsDraft != nil {
		opts = append(opts, WithDraft(*in.IsDraft))
	}
	if in.IsTest != nil {
		opts = append(opts, WithTest(*in.IsTest))
	}
	if in.MergePDFs != nil {
		opts = append(opts, WithMergePDFs(*in.MergePDFs))
	}
	if in.CreateCastTemplatesFromUploads != nil {
		opts = append(opts, WithCreateCastTemplatesFromUploads(*in.CreateCastTemplatesFromUploads))
	}
	if in.DuplicateCasts != nil {
		opts = append(opts, WithDuplicateCasts(*in.DuplicateCasts))
	}
	if len(in.Extra) > 0 {
		opts = append(opts, WithExtra(in.Extra))
	}

	p := NewPacket(in.Name, opts...)
	for _, s := range in.Signers {
		if err := p.AddSigner(s); err != nil {
			return nil, err
		}
	}
	for _, f := range in.Files {
		if err := p.AddFile(f); err != nil {
			return nil, err
		}
	}

	fills := in.FilePayloads
	if fills == nil && in.Data != nil {
		fills = in.Data.Payloads
	}
	ids := make([]string, 0, len(fills))
	for id := range fills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := p.AddFilePayload(id, fills[id]); err != nil {
			return nil, err
		}
	}
	return p, nil
}
