package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/domain/repository"
	"anvil-esign/internal/infrastructure/httpclient"
	"anvil-esign/internal/multipart"
	"anvil-esign/internal/payload"
)

type anvilRepository struct {
	config *config.Config
	client httpclient.HTTPClient
	logger *zap.Logger
}

func NewAnvilRepository(cfg *config.Config, client httpclient.HTTPClient, logger *zap.Logger) repository.AnvilRepository {
	return &anvilRepository{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// graphqlRequest is the JSON body of a query without uploads.
type graphqlRequest struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

func (r *anvilRepository) restURL(path string) string {
	return strings.TrimRight(r.config.Anvil.RestURL, "/") + "/" + path
}

func (r *anvilRepository) plainURL(path string) string {
	return strings.TrimRight(r.config.Anvil.PlainURL, "/") + "/" + path
}

// checkResponse turns non-2xx responses into *entity.UpstreamError.
func checkResponse(rawURL string, resp *httpclient.Response) error {
	if resp.OK() {
		return nil
	}
	return &entity.UpstreamError{
		StatusCode: resp.StatusCode,
		URL:        rawURL,
		Body:       resp.Body,
	}
}

func decodeGraphQL(body []byte) (json.RawMessage, error) {
	var gqlResp entity.GraphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to decode graphql response: %w", err)
	}
	if err := gqlResp.Err(); err != nil {
		return nil, err
	}
	return gqlResp.Data, nil
}

func (r *anvilRepository) graphql(ctx context.Context, operation, document string, variables any) (json.RawMessage, error) {
	endpoint := r.config.Anvil.GraphQLURL

	if variables != nil {
		flat, err := payload.Flatten(variables)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s variables: %w", operation, err)
		}
		variables = flat
	}

	if multipart.HasUploads(variables) {
		req, err := multipart.BuildRequest(document, variables)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart request: %w", err)
		}
		defer req.Close()

		r.logger.Info("Sending GraphQL request with uploads",
			zap.String("operation", operation),
			zap.Int("files", len(req.Parts)),
		)

		resp, err := r.client.PostMultipart(ctx, endpoint, req.Fields(), httpclient.WithOperation(operation))
		if err != nil {
			return nil, fmt.Errorf("failed to send %s: %w", operation, err)
		}
		if err := checkResponse(endpoint, resp); err != nil {
			return nil, err
		}
		return decodeGraphQL(resp.Body)
	}

	resp, err := r.client.PostJSON(ctx, endpoint, graphqlRequest{Query: document, Variables: variables}, httpclient.WithOperation(operation))
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", operation, err)
	}
	if err := checkResponse(endpoint, resp); err != nil {
		return nil, err
	}
	return decodeGraphQL(resp.Body)
}

func (r *anvilRepository) Query(ctx context.Context, query string, variables any) (json.RawMessage, error) {
	return r.graphql(ctx, "query", query, variables)
}

func (r *anvilRepository) Mutate(ctx context.Context, mutation string, variables any) (json.RawMessage, error) {
	return r.graphql(ctx, "mutation", mutation, variables)
}

func (r *anvilRepository) GetCurrentUser(ctx context.Context) (*entity.User, error) {
	data, err := r.graphql(ctx, "currentUser", currentUserQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	var response struct {
		CurrentUser *entity.User `json:"currentUser"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode current user: %w", err)
	}
	if response.CurrentUser == nil {
		return nil, entity.ErrNotFound
	}
	return response.CurrentUser, nil
}

func (r *anvilRepository) GetCast(ctx context.Context, eid string, fields []string) (*entity.Cast, error) {
	data, err := r.graphql(ctx, "cast", castQuery(eid, fields), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get cast %s: %w", eid, err)
	}

	var response struct {
		Cast *entity.Cast `json:"cast"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode cast: %w", err)
	}
	if response.Cast == nil {
		return nil, entity.ErrNotFound
	}
	return response.Cast, nil
}

func (r *anvilRepository) organizations(ctx context.Context, operation, query string) ([]entity.Organization, error) {
	data, err := r.graphql(ctx, operation, query, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		CurrentUser struct {
			Organizations []entity.Organization `json:"organizations"`
		} `json:"currentUser"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}
	return response.CurrentUser.Organizations, nil
}

func (r *anvilRepository) GetCasts(ctx context.Context, fields []string, all bool) ([]entity.Cast, error) {
	orgs, err := r.organizations(ctx, "casts", castsQuery(fields, all))
	if err != nil {
		return nil, fmt.Errorf("failed to get casts: %w", err)
	}

	casts := []entity.Cast{}
	for _, org := range orgs {
		casts = append(casts, org.Casts...)
	}
	return casts, nil
}

func (r *anvilRepository) GetWelds(ctx context.Context) ([]entity.Weld, error) {
	orgs, err := r.organizations(ctx, "welds", weldsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get welds: %w", err)
	}

	welds := []entity.Weld{}
	for _, org := range orgs {
		welds = append(welds, org.Welds...)
	}
	return welds, nil
}

func (r *anvilRepository) CreateEtchPacket(ctx context.Context, p *entity.EtchPacketPayload) (*entity.EtchPacket, error) {
	variables, err := payload.FlattenObject(p)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize etch packet: %w", err)
	}

	data, err := r.graphql(ctx, "createEtchPacket", createEtchPacketMutation, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to create etch packet: %w", err)
	}

	var response struct {
		CreateEtchPacket *entity.EtchPacket `json:"createEtchPacket"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode etch packet: %w", err)
	}
	if response.CreateEtchPacket == nil {
		return nil, fmt.Errorf("createEtchPacket returned no packet")
	}

	r.logger.Info("Etch packet created",
		zap.String("eid", response.CreateEtchPacket.EID),
		zap.String("name", response.CreateEtchPacket.Name),
	)
	return response.CreateEtchPacket, nil
}

func (r *anvilRepository) GenerateEtchSigningURL(ctx context.Context, p *entity.GenerateEtchSigningURLPayload) (string, error) {
	if err := entity.Validate(p); err != nil {
		return "", err
	}
	variables, err := payload.FlattenObject(p)
	if err != nil {
		return "", fmt.Errorf("failed to serialize signing url request: %w", err)
	}

	data, err := r.graphql(ctx, "generateEtchSignURL", generateEtchSignURLMutation, variables)
	if err != nil {
		return "", fmt.Errorf("failed to generate signing url: %w", err)
	}

	var response struct {
		URL string `json:"generateEtchSignURL"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return "", fmt.Errorf("failed to decode signing url: %w", err)
	}
	return response.URL, nil
}

func (r *anvilRepository) ForgeSubmit(ctx context.Context, p *entity.ForgeSubmitPayload) (json.RawMessage, error) {
	p.SetDefaults()
	if err := entity.Validate(p); err != nil {
		return nil, err
	}
	variables, err := payload.FlattenObject(p)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize forge submission: %w", err)
	}

	data, err := r.graphql(ctx, "forgeSubmit", forgeSubmitMutation, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to submit forge: %w", err)
	}

	var response struct {
		ForgeSubmit json.RawMessage `json:"forgeSubmit"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode forge submission: %w", err)
	}
	return response.ForgeSubmit, nil
}

func (r *anvilRepository) postREST(ctx context.Context, operation, rawURL string, model any) ([]byte, error) {
	if d, ok := model.(payload.Defaulter); ok {
		d.SetDefaults()
	}
	if err := entity.Validate(model); err != nil {
		return nil, err
	}
	body, err := payload.Flatten(model)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s payload: %w", operation, err)
	}

	resp, err := r.client.PostJSON(ctx, rawURL, body, httpclient.WithOperation(operation))
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", operation, err)
	}
	if err := checkResponse(rawURL, resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (r *anvilRepository) FillPDF(ctx context.Context, templateID string, p *entity.FillPDFPayload) ([]byte, error) {
	if templateID == "" {
		return nil, &entity.ValidationError{Field: "template_id", Message: "is required"}
	}
	return r.postREST(ctx, "fillPDF", r.restURL("fill/"+url.PathEscape(templateID)+".pdf"), p)
}

func (r *anvilRepository) GeneratePDF(ctx context.Context, p *entity.GeneratePDFPayload) ([]byte, error) {
	return r.postREST(ctx, "generatePDF", r.restURL("generate-pdf"), p)
}

func (r *anvilRepository) DownloadDocuments(ctx context.Context, documentGroupEID string) ([]byte, error) {
	if documentGroupEID == "" {
		return nil, &entity.ValidationError{Field: "document_group_eid", Message: "is required"}
	}
	rawURL := r.plainURL("document-group/" + url.PathEscape(documentGroupEID) + ".zip")

	resp, err := r.client.Get(ctx, rawURL, nil, httpclient.WithOperation("downloadDocuments"))
	if err != nil {
		return nil, fmt.Errorf("failed to download documents: %w", err)
	}
	if err := checkResponse(rawURL, resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}
