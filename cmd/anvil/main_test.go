package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anvilco/go-anvil/pkg/anvil"
	"github.com/anvilco/go-anvil/pkg/api"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &anvil.ValidationError{Message: "x"}, exitValidation},
		{"transport", &anvil.TransportError{Err: errors.New("refused")}, exitTransport},
		{"not found", &anvil.APIError{Kind: anvil.KindNotFound}, exitNotFound},
		{"permission denied", &anvil.APIError{Kind: anvil.KindPermissionDenied}, exitPermissionDenied},
		{"remote validation", &anvil.APIError{Kind: anvil.KindValidationFailed}, exitRemoteValidation},
		{"rate limited", &anvil.APIError{Kind: anvil.KindRateLimited}, exitRateLimited},
		{"unknown api error", &anvil.APIError{Kind: anvil.KindUnknown}, exitUsage},
		{"plain error", errors.New("bad flag"), exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeSeesWrappedErrors(t *testing.T) {
	// RunE handlers wrap library errors with context before they reach main.
	err := errors.Join(errors.New("fill failed"), &anvil.APIError{Kind: anvil.KindNotFound})
	if got := exitCode(err); got != exitNotFound {
		t.Errorf("wrapped error: got %d, want %d", got, exitNotFound)
	}
}

func TestGetAPIKey(t *testing.T) {
	t.Cleanup(func() { apiKey = "" })

	apiKey = ""
	t.Setenv("ANVIL_API_KEY", "from-env")
	if got := getAPIKey(); got != "from-env" {
		t.Errorf("env key: %q", got)
	}

	apiKey = "from-flag"
	if got := getAPIKey(); got != "from-flag" {
		t.Errorf("flag should win: %q", got)
	}
}

func TestGetEndpoint(t *testing.T) {
	t.Cleanup(func() { endpoint = "" })

	endpoint = ""
	t.Setenv("ANVIL_ENDPOINT", "")
	if got := getEndpoint(); got != api.DefaultBaseURL {
		t.Errorf("default endpoint: %q", got)
	}

	t.Setenv("ANVIL_ENDPOINT", "https://env.example.com")
	if got := getEndpoint(); got != "https://env.example.com" {
		t.Errorf("env endpoint: %q", got)
	}

	endpoint = "https://flag.example.com"
	if got := getEndpoint(); got != "https://flag.example.com" {
		t.Errorf("flag should win: %q", got)
	}
}

func TestGetEnvironment(t *testing.T) {
	t.Cleanup(func() { environment = "" })

	environment = ""
	t.Setenv("ANVIL_ENVIRONMENT", "")
	if got := getEnvironment(); got != api.EnvironmentDevelopment {
		t.Errorf("default environment: %q", got)
	}

	t.Setenv("ANVIL_ENVIRONMENT", "prod")
	if got := getEnvironment(); got != api.EnvironmentProduction {
		t.Errorf("env environment: %q", got)
	}

	environment = "dev"
	if got := getEnvironment(); got != api.EnvironmentDevelopment {
		t.Errorf("flag should win: %q", got)
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(path, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := readInput(path)
	if err != nil {
		t.Fatalf("readInput error: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("data: %s", data)
	}

	if _, err := readInput(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeInput(t *testing.T) {
	var payload anvil.FillPDFPayload
	if err := decodeInput([]byte(`{"title":"T","data":{"name":"Jane"}}`), &payload); err != nil {
		t.Fatalf("decodeInput error: %v", err)
	}
	if payload.Title != "T" || payload.Data["name"] != "Jane" {
		t.Errorf("payload: %+v", payload)
	}

	// Unknown fields are typos, not passthrough data.
	if err := decodeInput([]byte(`{"titel":"T"}`), &payload); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestAttachFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	payload := &anvil.CreateEtchPacketPayload{
		Files: []anvil.EtchFile{{ID: "contract"}},
	}

	if err := attachFiles(payload, map[string]string{"contract": path}); err != nil {
		t.Fatalf("attachFiles error: %v", err)
	}
	if payload.Files[0].File == nil || string(payload.Files[0].File.Data) != "%PDF-1.4" {
		t.Errorf("file not attached: %+v", payload.Files[0].File)
	}

	if err := attachFiles(payload, map[string]string{"nope": path}); err == nil {
		t.Error("expected error for unmatched file id")
	}
}

func TestWriteDownload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")

	download := &anvil.FileDownload{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"}
	if err := writeDownload(download, path); err != nil {
		t.Fatalf("writeDownload error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("written: %s", data)
	}
}
