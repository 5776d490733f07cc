package entity

import (
	"encoding/json"
	"time"
)

// Webhook actions handled by the service
const (
	ActionSignerComplete     = "signerComplete"
	ActionSignerUpdateStatus = "signerUpdateStatus"
	ActionEtchPacketComplete = "etchPacketComplete"
	ActionDocumentGroupDone  = "documentGroupComplete"
)

// Packet statuses stored in the packet record
const (
	PacketStatusSent      = "sent"
	PacketStatusSigning   = "signing"
	PacketStatusCompleted = "completed"
)

// WebhookPayload is the callback body sent by Anvil.
type WebhookPayload struct {
	Action string          `json:"action"`
	Token  string          `json:"token"`
	Data   json.RawMessage `json:"data"`
}

// WebhookData is the packet information carried by Etch webhook actions.
type WebhookData struct {
	EID           string             `json:"eid"`
	Name          string             `json:"name"`
	Status        string             `json:"status"`
	DocumentGroup *DocumentGroup     `json:"documentGroup,omitempty"`
	Signers       []EtchPacketSigner `json:"signers,omitempty"`
	Signer        *EtchPacketSigner  `json:"signer,omitempty"`
	Packet        *EtchPacket        `json:"etchPacket,omitempty"`
}

// PacketEID returns the packet eid from whichever shape the action uses.
func (d *WebhookData) PacketEID() string {
	if d.Packet != nil && d.Packet.EID != "" {
		return d.Packet.EID
	}
	return d.EID
}

// PacketRecord is the packet information stored in Redis
type PacketRecord struct {
	EID              string    `json:"eid"`
	Name             string    `json:"name"`
	DetailsURL       string    `json:"details_url,omitempty"`
	DocumentGroupEID string    `json:"document_group_eid,omitempty"`
	Status           string    `json:"status"`
	SourceFiles      []string  `json:"source_files,omitempty"`
	SignedArchive    string    `json:"signed_archive,omitempty"`
	ArchiveChecksum  string    `json:"archive_checksum,omitempty"` // hex BLAKE3-256 of the archive
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
