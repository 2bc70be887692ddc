package anvil

import (
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		opts    []Option
		wantErr string
	}{
		{
			name:   "defaults",
			apiKey: "key",
		},
		{
			name:    "empty api key",
			apiKey:  "",
			wantErr: "apiKey cannot be empty",
		},
		{
			name:    "zero timeout",
			apiKey:  "key",
			opts:    []Option{WithTimeout(0)},
			wantErr: "timeout must be positive",
		},
		{
			name:    "negative retries",
			apiKey:  "key",
			opts:    []Option{WithMaxRetries(-1)},
			wantErr: "maxRetries cannot be negative",
		},
		{
			name:    "inverted retry window",
			apiKey:  "key",
			opts:    []Option{WithRetryWait(10*time.Second, time.Second)},
			wantErr: "retryWaitMin must be less than retryWaitMax",
		},
		{
			name:    "unknown environment",
			apiKey:  "key",
			opts:    []Option{WithEnvironment("staging")},
			wantErr: "environment",
		},
		{
			name:   "custom options accepted",
			apiKey: "key",
			opts: []Option{
				WithBaseURL("https://example.com"),
				WithUserAgent("custom/1.0"),
				WithMaxRetries(0),
				WithRetryWait(100*time.Millisecond, time.Second),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.apiKey, tt.opts...)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c == nil || c.api == nil {
				t.Fatal("client missing transport")
			}
		})
	}
}
