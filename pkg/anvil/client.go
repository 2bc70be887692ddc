package anvil

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/anvilco/go-anvil/pkg/api"
)

// Client is the Anvil API façade: one method per supported operation,
// stateless with respect to other calls. It holds only the credential and
// the transport, both read-only after construction, so a Client is safe
// for concurrent use by multiple goroutines.
//
// Do not copy a Client after first use.
type Client struct {
	api  *api.Client
	opts *Options
}

// New creates an Anvil client for the given API key.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey cannot be empty")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	if options.maxRetries < 0 {
		return nil, errors.New("maxRetries cannot be negative")
	}
	if options.retryWaitMin <= 0 || options.retryWaitMax <= 0 {
		return nil, errors.New("retry wait durations must be positive")
	}
	if options.retryWaitMin >= options.retryWaitMax {
		return nil, errors.New("retryWaitMin must be less than retryWaitMax")
	}

	transport, err := api.NewClient(api.Config{
		BaseURL:      options.baseURL,
		APIKey:       apiKey,
		Environment:  options.environment,
		HTTPClient:   options.httpClient,
		Timeout:      options.timeout,
		Logger:       options.logger,
		UserAgent:    options.userAgent,
		MaxRetries:   options.maxRetries,
		RetryWaitMin: options.retryWaitMin,
		RetryWaitMax: options.retryWaitMax,
	})
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	return &Client{
		api:  transport,
		opts: options,
	}, nil
}

// FillPDF fills the template identified by templateEid with the payload
// data and returns the rendered PDF. Unknown field names in the payload
// pass through untouched.
func (c *Client) FillPDF(ctx context.Context, templateEid string, payload *FillPDFPayload) (*FileDownload, error) {
	op := lookupOperation(opFillPDF)
	if err := op.requireArgs(map[string]string{"templateEid": templateEid}); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, &ValidationError{Message: "payload cannot be nil"}
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	var query url.Values
	if payload.VersionNumber != 0 {
		query = url.Values{"versionNumber": []string{strconv.Itoa(payload.VersionNumber)}}
	}

	// The transport escapes the path; pre-escaping here would double-encode.
	resp, err := c.api.RequestJSON(ctx, op.method, fmt.Sprintf(op.path, templateEid), query, payload)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return decodeBinary(op, resp)
}

// GeneratePDF renders a new PDF from markdown or HTML content.
func (c *Client) GeneratePDF(ctx context.Context, payload *GeneratePDFPayload) (*FileDownload, error) {
	op := lookupOperation(opGeneratePDF)
	if payload == nil {
		return nil, &ValidationError{Message: "payload cannot be nil"}
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	resp, err := c.api.RequestJSON(ctx, op.method, op.path, nil, payload)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return decodeBinary(op, resp)
}

// DownloadDocuments retrieves all completed documents of a document group
// as a zip archive.
func (c *Client) DownloadDocuments(ctx context.Context, documentGroupEid string) (*FileDownload, error) {
	op := lookupOperation(opDownloadDocuments)
	if err := op.requireArgs(map[string]string{"documentGroupEid": documentGroupEid}); err != nil {
		return nil, err
	}

	resp, err := c.api.RequestBinary(ctx, fmt.Sprintf(op.path, documentGroupEid), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return decodeBinary(op, resp)
}

// GetCurrentUser returns the account that owns the API key.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	op := lookupOperation(opCurrentUser)
	resp, err := c.api.RequestGraphQL(ctx, op.document, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var user User
	if err := decodeGraphQLInto(op, resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCastOptions tunes a single-cast lookup.
type GetCastOptions struct {
	// VersionNumber selects a specific template version. Zero means the
	// latest published version; VersionLatest selects drafts.
	VersionNumber int
}

// GetCast fetches one template and its field metadata.
func (c *Client) GetCast(ctx context.Context, eid string, opts *GetCastOptions) (*Cast, error) {
	op := lookupOperation(opCast)
	if err := op.requireArgs(map[string]string{"eid": eid}); err != nil {
		return nil, err
	}

	variables := map[string]any{"eid": eid}
	if opts != nil && opts.VersionNumber != 0 {
		variables["versionNumber"] = opts.VersionNumber
	}

	resp, err := c.api.RequestGraphQL(ctx, op.document, variables)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var cast Cast
	if err := decodeGraphQLInto(op, resp, &cast); err != nil {
		return nil, err
	}
	return &cast, nil
}

// GetCasts lists templates across every organization the key can see.
// Only templates are returned unless showAll is set.
func (c *Client) GetCasts(ctx context.Context, showAll bool) ([]Cast, error) {
	op := lookupOperation(opCasts)

	var variables map[string]any
	if !showAll {
		variables = map[string]any{"isTemplate": true}
	}

	resp, err := c.api.RequestGraphQL(ctx, op.document, variables)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var orgs []Organization
	if err := decodeGraphQLInto(op, resp, &orgs); err != nil {
		return nil, err
	}
	return flattenOrganizations(orgs, func(o Organization) []Cast { return o.Casts }), nil
}

// GetWeld fetches one workflow by eid.
func (c *Client) GetWeld(ctx context.Context, eid string) (*Weld, error) {
	op := lookupOperation(opWeld)
	if err := op.requireArgs(map[string]string{"eid": eid}); err != nil {
		return nil, err
	}

	resp, err := c.api.RequestGraphQL(ctx, op.document, map[string]any{"eid": eid})
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var weld Weld
	if err := decodeGraphQLInto(op, resp, &weld); err != nil {
		return nil, err
	}
	return &weld, nil
}

// GetWelds lists workflows across every organization the key can see.
func (c *Client) GetWelds(ctx context.Context) ([]Weld, error) {
	op := lookupOperation(opWelds)
	resp, err := c.api.RequestGraphQL(ctx, op.document, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var orgs []Organization
	if err := decodeGraphQLInto(op, resp, &orgs); err != nil {
		return nil, err
	}
	return flattenOrganizations(orgs, func(o Organization) []Weld { return o.Welds }), nil
}

// CreateEtchPacket creates a signature packet. File attachments are
// multipart-packaged next to the mutation, or base64-embedded into the
// variables for files marked Base64; without attachments the mutation is
// sent as plain JSON.
func (c *Client) CreateEtchPacket(ctx context.Context, payload *CreateEtchPacketPayload) (*EtchPacket, error) {
	op := lookupOperation(opCreateEtchPacket)
	if payload == nil {
		return nil, &ValidationError{Message: "payload cannot be nil"}
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	if err := payload.normalize(); err != nil {
		return nil, err
	}

	variables, uploads, err := buildEtchPacketVariables(payload)
	if err != nil {
		return nil, err
	}

	var resp *api.Response
	if len(uploads) > 0 && op.encoding == encodeMultipart {
		resp, err = c.api.RequestGraphQLMultipart(ctx, op.document, variables, uploads)
	} else {
		resp, err = c.api.RequestGraphQL(ctx, op.document, variables)
	}
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var packet EtchPacket
	if err := decodeGraphQLInto(op, resp, &packet); err != nil {
		return nil, err
	}
	return &packet, nil
}

// GenerateEtchSigningURL generates an embedded signing URL for one signer.
func (c *Client) GenerateEtchSigningURL(ctx context.Context, signerEid, clientUserID string) (string, error) {
	op := lookupOperation(opGenerateEtchSignURL)
	if err := op.requireArgs(map[string]string{"signerEid": signerEid, "clientUserId": clientUserID}); err != nil {
		return "", err
	}

	resp, err := c.api.RequestGraphQL(ctx, op.document, map[string]any{
		"signerEid":    signerEid,
		"clientUserId": clientUserID,
	})
	if err != nil {
		return "", &TransportError{Err: err}
	}

	var signURL string
	if err := decodeGraphQLInto(op, resp, &signURL); err != nil {
		return "", err
	}
	return signURL, nil
}

// ForgeSubmit creates or updates a webform submission.
func (c *Client) ForgeSubmit(ctx context.Context, payload *ForgeSubmitPayload) (*ForgeSubmission, error) {
	op := lookupOperation(opForgeSubmit)
	if payload == nil {
		return nil, &ValidationError{Message: "payload cannot be nil"}
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	variables, err := toVariables(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.RequestGraphQL(ctx, op.document, variables)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var submission ForgeSubmission
	if err := decodeGraphQLInto(op, resp, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListEtchPacketsOptions selects a page of the packet listing. Cursor is
// the opaque token from a previous page's PageInfo; it is only valid for
// this query.
type ListEtchPacketsOptions struct {
	OrganizationEid string
	Cursor          string
	Limit           int
}

// ListEtchPackets fetches one page of signature packets. It fails with
// ErrNoProgress when the server echoes the requested cursor back while
// still claiming more pages, so callers can never loop forever.
func (c *Client) ListEtchPackets(ctx context.Context, opts ListEtchPacketsOptions) (*EtchPacketPage, error) {
	op := lookupOperation(opEtchPackets)

	variables := map[string]any{}
	if opts.OrganizationEid != "" {
		variables["organizationEid"] = opts.OrganizationEid
	}
	if opts.Cursor != "" {
		variables["cursor"] = opts.Cursor
	}
	if opts.Limit > 0 {
		variables["limit"] = opts.Limit
	}

	resp, err := c.api.RequestGraphQL(ctx, op.document, variables)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var page EtchPacketPage
	if err := decodeGraphQLInto(op, resp, &page); err != nil {
		return nil, err
	}
	// An echoed cursor cannot advance; that includes the empty initial one.
	if page.PageInfo.HasNextPage && page.PageInfo.EndCursor == opts.Cursor {
		return nil, ErrNoProgress
	}
	page.opts = opts
	return &page, nil
}

// NextEtchPackets replays the listing with the cursor from page. It
// returns nil with no error when the listing is exhausted.
func (c *Client) NextEtchPackets(ctx context.Context, page *EtchPacketPage) (*EtchPacketPage, error) {
	if page == nil {
		return nil, &ValidationError{Message: "page cannot be nil"}
	}
	if !page.HasNextPage() {
		return nil, nil
	}
	opts := page.opts
	opts.Cursor = page.PageInfo.EndCursor
	return c.ListEtchPackets(ctx, opts)
}

// Query posts a caller-authored GraphQL document and returns the payload
// under "data" with the envelope unwrapped and errors translated. It is
// the escape hatch for queries the typed methods do not cover.
func (c *Client) Query(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error) {
	if document == "" {
		return nil, &ValidationError{Message: "document cannot be empty"}
	}

	resp, err := c.api.RequestGraphQL(ctx, document, variables)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return decodeGraphQL(operation{name: "query", encoding: encodeGraphQL}, resp)
}

// Mutate posts a caller-authored GraphQL mutation. Identical to Query; the
// name mirrors the operation kind.
func (c *Client) Mutate(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error) {
	return c.Query(ctx, document, variables)
}

// toVariables round-trips a payload through its JSON tags into a GraphQL
// variables map, honoring omitempty.
func toVariables(payload any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("encode payload: %v", err)}
	}
	var variables map[string]any
	if err := json.Unmarshal(raw, &variables); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("encode payload: %v", err)}
	}
	return variables, nil
}

// buildEtchPacketVariables shapes the mutation variables and collects
// multipart uploads. Each uploaded file leaves a null placeholder at
// variables.files.<i>.file per the multipart request spec; files marked
// Base64 are embedded directly instead.
func buildEtchPacketVariables(payload *CreateEtchPacketPayload) (map[string]any, []api.Upload, error) {
	variables, err := toVariables(payload)
	if err != nil {
		return nil, nil, err
	}

	var uploads []api.Upload
	if len(payload.Files) > 0 {
		files := make([]any, len(payload.Files))
		for i, f := range payload.Files {
			entry, err := toVariables(f)
			if err != nil {
				return nil, nil, err
			}
			switch {
			case f.File == nil:
				// Cast reference only.
			case f.Base64:
				entry["file"] = map[string]any{
					"data":     base64.StdEncoding.EncodeToString(f.File.Data),
					"filename": f.File.Filename,
					"mimetype": f.File.contentType(),
				}
			default:
				entry["file"] = nil
				uploads = append(uploads, api.Upload{
					Path:        fmt.Sprintf("variables.files.%d.file", i),
					Filename:    f.File.Filename,
					ContentType: f.File.contentType(),
					Data:        f.File.Data,
				})
			}
			files[i] = entry
		}
		variables["files"] = files
	}
	return variables, uploads, nil
}
