package anvil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Shared validator instance for request payloads.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Template version selectors for operations that accept a versionNumber.
const (
	// VersionLatest selects the latest version, including unpublished drafts.
	VersionLatest = -1
	// VersionLatestPublished selects the latest published version. This is
	// the server default when no version is given.
	VersionLatestPublished = -2
)

// FillPDFPayload pre-fills a PDF template. Data maps form-field names to
// values; unknown field names are passed through untouched, the remote
// service is authoritative on validity.
type FillPDFPayload struct {
	Title     string         `json:"title,omitempty"`
	FontSize  int            `json:"fontSize,omitempty"`
	TextColor string         `json:"textColor,omitempty"`
	Data      map[string]any `json:"data" validate:"required"`

	// VersionNumber is sent as a query parameter, not in the body.
	VersionNumber int `json:"-"`
}

// GeneratePDFPayload renders a new PDF from markdown or HTML content.
type GeneratePDFPayload struct {
	Title string `json:"title,omitempty"`
	// Type is "markdown" (default) or "html".
	Type string `json:"type,omitempty" validate:"omitempty,oneof=markdown html"`
	Data any    `json:"data" validate:"required"`
	Page any    `json:"page,omitempty"`
}

// UploadFile is a request-scoped file attachment: read once, packaged onto
// the outgoing payload, not retained.
type UploadFile struct {
	Filename string `validate:"required"`
	Mimetype string
	Data     []byte `validate:"required"`
}

// contentType returns the declared mimetype, sniffing the content when the
// caller did not declare one.
func (f *UploadFile) contentType() string {
	if f.Mimetype != "" {
		return f.Mimetype
	}
	return mimetype.Detect(f.Data).String()
}

// EtchFile is one document in a signature packet: either a reference to an
// existing cast template (CastEid) or an uploaded file.
type EtchFile struct {
	ID       string `json:"id" validate:"required"`
	CastEid  string `json:"castEid,omitempty"`
	Title    string `json:"title,omitempty"`
	Filename string `json:"filename,omitempty"`
	Fields   []any  `json:"fields,omitempty"`

	// File is attached out-of-band: multipart-packaged next to the
	// mutation, or base64-embedded into the variables when Base64 is set.
	File   *UploadFile `json:"-"`
	Base64 bool        `json:"-"`
}

// SignerField assigns one template field to a signer. FileID must resolve
// to a declared EtchFile.
type SignerField struct {
	FileID  string `json:"fileId" validate:"required"`
	FieldID string `json:"fieldId" validate:"required"`
}

// EtchSigner identifies one signing party and the fields they complete.
type EtchSigner struct {
	// ID is the caller-chosen identifier, unique within the packet. A
	// "signer-<uuid>" value is assigned when empty.
	ID           string        `json:"id,omitempty"`
	Name         string        `json:"name" validate:"required"`
	Email        string        `json:"email" validate:"required,email"`
	RoutingOrder int           `json:"routingOrder,omitempty"`
	SignerType   string        `json:"signerType,omitempty" validate:"omitempty,oneof=email embedded"`
	RedirectURL  string        `json:"redirectURL,omitempty"`
	EnableEmails []string      `json:"enableEmails,omitempty"`
	Fields       []SignerField `json:"fields" validate:"required,min=1,dive"`
}

// CreateEtchPacketPayload creates a signature packet: documents plus
// ordered signers.
type CreateEtchPacketPayload struct {
	Name                  string         `json:"name" validate:"required"`
	Files                 []EtchFile     `json:"files,omitempty" validate:"omitempty,dive"`
	Signers               []EtchSigner   `json:"signers" validate:"required,min=1,dive"`
	IsDraft               bool           `json:"isDraft"`
	IsTest                bool           `json:"isTest"`
	SignatureEmailSubject string         `json:"signatureEmailSubject,omitempty"`
	SignatureEmailBody    string         `json:"signatureEmailBody,omitempty"`
	WebhookURL            string         `json:"webhookURL,omitempty"`
	Data                  map[string]any `json:"data,omitempty"`
}

// ForgeSubmitPayload creates or updates a webform (forge) submission.
type ForgeSubmitPayload struct {
	ForgeEid        string         `json:"forgeEid" validate:"required"`
	WeldDataEid     string         `json:"weldDataEid,omitempty"`
	SubmissionEid   string         `json:"submissionEid,omitempty"`
	Payload         map[string]any `json:"payload" validate:"required"`
	CurrentStep     int            `json:"currentStep,omitempty"`
	Complete        *bool          `json:"complete,omitempty"`
	IsTest          bool           `json:"isTest"`
	GroupArrayID    string         `json:"groupArrayId,omitempty"`
	GroupArrayIndex *int           `json:"groupArrayIndex,omitempty"`
}

// WebhookPayload is the body Anvil POSTs to a configured webhook URL.
type WebhookPayload struct {
	Action string          `json:"action"`
	Token  string          `json:"token"`
	Data   json.RawMessage `json:"data"`
}

// ParseWebhookPayload decodes a webhook request body.
func ParseWebhookPayload(body []byte) (*WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("malformed webhook payload: %v", err)}
	}
	if p.Action == "" {
		return nil, &ValidationError{Message: "webhook payload missing action", Fields: []string{"action"}}
	}
	return &p, nil
}

// validatePayload runs struct-tag validation and translates failures into
// the library's ValidationError.
func validatePayload(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: err.Error()}
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Namespace()
	}
	return &ValidationError{
		Message: fmt.Sprintf("missing or invalid fields: %s", strings.Join(fields, ", ")),
		Fields:  fields,
	}
}

// normalize prepares an etch packet for submission: assigns signer ids,
// then verifies every signer field references a declared file. Both checks
// happen before any network call.
func (p *CreateEtchPacketPayload) normalize() error {
	fileIDs := make(map[string]bool, len(p.Files))
	for _, f := range p.Files {
		fileIDs[f.ID] = true
	}

	for i := range p.Signers {
		s := &p.Signers[i]
		if s.ID == "" {
			s.ID = "signer-" + uuid.NewString()
		}
		for _, field := range s.Fields {
			if !fileIDs[field.FileID] {
				return &ValidationError{
					Message: fmt.Sprintf("signer %q references undeclared file %q", s.ID, field.FileID),
					Fields:  []string{"signers"},
				}
			}
		}
	}
	return nil
}
