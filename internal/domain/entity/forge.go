package entity

// ForgeSubmitPayload submits data to a Workflow webform.
type ForgeSubmitPayload struct {
	ForgeEID                    string         `anvil:"forge_eid" validate:"required"`
	Payload                     map[string]any `anvil:"payload" validate:"required"`
	WeldDataEID                 string         `anvil:"weld_data_eid,omitzero"`
	SubmissionEID               string         `anvil:"submission_eid,omitzero"`
	EnforcePayloadValidOnCreate *bool          `anvil:"enforce_payload_valid_on_create"`
	CurrentStep                 *int           `anvil:"current_step"`
	Complete                    *bool          `anvil:"complete"`
	IsTest                      *bool          `anvil:"is_test"`
	Timezone                    string         `anvil:"timezone,omitzero"`
	WebhookURL                  string         `anvil:"webhook_url,omitzero" validate:"omitempty,url"`
	GroupArrayID                string         `anvil:"group_array_id,omitzero"`
	GroupArrayIndex             *int           `anvil:"group_array_index"`
	Extra                       map[string]any `anvil:",remain"`
}

func (p *ForgeSubmitPayload) SetDefaults() {
	if p.IsTest == nil {
		p.IsTest = Bool(true)
	}
}

// GenerateEtchSigningURLPayload requests a signing URL for an embedded signer.
type GenerateEtchSigningURLPayload struct {
	SignerEID    string `anvil:"signer_eid" validate:"required" json:"signer_eid"`
	ClientUserID string `anvil:"client_user_id" validate:"required" json:"client_user_id"`
}
