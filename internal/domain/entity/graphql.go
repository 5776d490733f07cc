package entity

import (
	"encoding/json"
	"strings"
)

// GraphQLResponse is the envelope returned by the GraphQL endpoint.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// GraphQLErrors is returned when the response carries errors.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Err returns the response errors as an error, or nil when there are none.
func (r *GraphQLResponse) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return GraphQLErrors(r.Errors)
}

type Organization struct {
	EID   string `json:"eid"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Casts []Cast `json:"casts,omitempty"`
	Welds []Weld `json:"welds,omitempty"`
}

type User struct {
	EID           string         `json:"eid"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Role          string         `json:"role"`
	Organizations []Organization `json:"organizations"`
}

// Cast is a PDF template.
type Cast struct {
	EID       string          `json:"eid"`
	Name      string          `json:"name,omitempty"`
	Title     string          `json:"title,omitempty"`
	FieldInfo json.RawMessage `json:"fieldInfo,omitempty"`
}

// Weld is a Workflow.
type Weld struct {
	EID   string `json:"eid"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type EtchPacketSigner struct {
	ID             string `json:"id"`
	EID            string `json:"eid"`
	AliasID        string `json:"aliasId"`
	RoutingOrder   int    `json:"routingOrder"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	SignActionType string `json:"signActionType"`
}

type DocumentGroup struct {
	ID      string             `json:"id"`
	EID     string             `json:"eid"`
	Status  string             `json:"status"`
	Files   json.RawMessage    `json:"files,omitempty"`
	Signers []EtchPacketSigner `json:"signers,omitempty"`
}

// EtchPacket is the createEtchPacket result.
type EtchPacket struct {
	ID            string         `json:"id"`
	EID           string         `json:"eid"`
	Name          string         `json:"name"`
	DetailsURL    string         `json:"detailsURL"`
	DocumentGroup *DocumentGroup `json:"documentGroup,omitempty"`
}
