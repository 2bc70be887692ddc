package anvil

import (
	"strings"
	"testing"
)

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   any
		wantErr   bool
		wantField string
	}{
		{
			name:    "fill payload ok",
			payload: &FillPDFPayload{Data: map[string]any{"name": "Jane"}},
		},
		{
			name:      "fill payload missing data",
			payload:   &FillPDFPayload{Title: "only a title"},
			wantErr:   true,
			wantField: "Data",
		},
		{
			name:    "generate payload ok",
			payload: &GeneratePDFPayload{Type: "html", Data: "<h1>hi</h1>"},
		},
		{
			name:      "generate payload bad type",
			payload:   &GeneratePDFPayload{Type: "docx", Data: "x"},
			wantErr:   true,
			wantField: "Type",
		},
		{
			name:      "forge payload missing eid",
			payload:   &ForgeSubmitPayload{Payload: map[string]any{"a": 1}},
			wantErr:   true,
			wantField: "ForgeEid",
		},
		{
			name:      "signer type restricted",
			payload:   &EtchSigner{Name: "J", Email: "j@example.com", SignerType: "fax", Fields: []SignerField{{FileID: "f", FieldID: "x"}}},
			wantErr:   true,
			wantField: "SignerType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePayload(tt.payload)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error should name %s: %v", tt.wantField, err)
			}
		})
	}
}

func TestNormalizeAssignsSignerIDs(t *testing.T) {
	payload := &CreateEtchPacketPayload{
		Name:  "Packet",
		Files: []EtchFile{{ID: "f1", CastEid: "c1"}},
		Signers: []EtchSigner{
			{Name: "A", Email: "a@example.com", Fields: []SignerField{{FileID: "f1", FieldID: "sig"}}},
			{ID: "keep-me", Name: "B", Email: "b@example.com", Fields: []SignerField{{FileID: "f1", FieldID: "init"}}},
		},
	}

	if err := payload.normalize(); err != nil {
		t.Fatalf("normalize error: %v", err)
	}

	if !strings.HasPrefix(payload.Signers[0].ID, "signer-") {
		t.Errorf("generated id: %q", payload.Signers[0].ID)
	}
	if payload.Signers[1].ID != "keep-me" {
		t.Errorf("explicit id overwritten: %q", payload.Signers[1].ID)
	}
}

func TestNormalizeRejectsUndeclaredFile(t *testing.T) {
	payload := &CreateEtchPacketPayload{
		Name:  "Packet",
		Files: []EtchFile{{ID: "f1", CastEid: "c1"}},
		Signers: []EtchSigner{
			{Name: "A", Email: "a@example.com", Fields: []SignerField{{FileID: "nope", FieldID: "sig"}}},
		},
	}

	err := payload.normalize()
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("error should name the missing file: %v", err)
	}
}

func TestUploadFileContentType(t *testing.T) {
	declared := &UploadFile{Filename: "a.bin", Mimetype: "application/x-custom", Data: []byte{1}}
	if got := declared.contentType(); got != "application/x-custom" {
		t.Errorf("declared mimetype ignored: %s", got)
	}

	sniffed := &UploadFile{Filename: "a.pdf", Data: []byte("%PDF-1.4\n")}
	if got := sniffed.contentType(); got != "application/pdf" {
		t.Errorf("sniffed mimetype: %s", got)
	}
}

func TestParseWebhookPayload(t *testing.T) {
	p, err := ParseWebhookPayload([]byte(`{"action":"signerComplete","token":"tok","data":{"eid":"sgn1"}}`))
	if err != nil {
		t.Fatalf("ParseWebhookPayload error: %v", err)
	}
	if p.Action != "signerComplete" || p.Token != "tok" {
		t.Errorf("payload: %+v", p)
	}

	if _, err := ParseWebhookPayload([]byte(`{"token":"tok"}`)); !IsValidationError(err) {
		t.Errorf("expected ValidationError for missing action, got %v", err)
	}
	if _, err := ParseWebhookPayload([]byte(`not json`)); !IsValidationError(err) {
		t.Errorf("expected ValidationError for malformed body, got %v", err)
	}
}
