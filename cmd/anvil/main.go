// Package main provides a CLI for the Anvil document and e-signature API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anvilco/go-anvil/pkg/anvil"
	"github.com/anvilco/go-anvil/pkg/api"
)

var (
	// Global flags
	apiKey      string
	endpoint    string
	environment string
	timeout     time.Duration
	jsonOutput  bool
	debug       bool
)

// cfg resolves ANVIL_* environment variables behind the flags.
var cfg = viper.New()

// Exit codes, one per error kind so scripts can branch on failures.
const (
	exitOK = iota
	exitUsage
	exitValidation
	exitTransport
	exitNotFound
	exitPermissionDenied
	exitRemoteValidation
	exitRateLimited
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps the library's error taxonomy onto distinct exit codes.
func exitCode(err error) int {
	switch {
	case anvil.IsValidationError(err):
		return exitValidation
	case anvil.IsTransportError(err):
		return exitTransport
	case anvil.IsNotFound(err):
		return exitNotFound
	case anvil.IsPermissionDenied(err):
		return exitPermissionDenied
	case anvil.IsValidationFailed(err):
		return exitRemoteValidation
	case anvil.IsRateLimited(err):
		return exitRateLimited
	default:
		return exitUsage
	}
}

var rootCmd = &cobra.Command{
	Use:   "anvil",
	Short: "Anvil e-signature API CLI",
	Long: `A command-line client for the Anvil document and e-signature API.

This tool allows you to:
  - Fill and generate PDFs
  - Inspect templates (casts), workflows (welds), and your account
  - Create signature packets and embedded signing URLs
  - Submit webform (forge) data
  - Download completed document groups

Environment variables:
  ANVIL_API_KEY      - API key (required unless --api-key is given)
  ANVIL_ENDPOINT     - API base URL (default: https://app.useanvil.com)
  ANVIL_ENVIRONMENT  - Rate-limit profile: dev or prod (default: dev)`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&apiKey, "api-key", "k", "", "API key (or ANVIL_API_KEY env)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "API base URL (or ANVIL_ENDPOINT env)")
	rootCmd.PersistentFlags().StringVar(&environment, "environment", "", "Rate-limit profile: dev or prod (or ANVIL_ENVIRONMENT env)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log requests to stderr")

	cfg.SetEnvPrefix("ANVIL")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	rootCmd.AddCommand(fillPDFCmd)
	rootCmd.AddCommand(generatePDFCmd)
	rootCmd.AddCommand(currentUserCmd)
	rootCmd.AddCommand(castCmd)
	rootCmd.AddCommand(weldCmd)
	rootCmd.AddCommand(etchCmd)
	rootCmd.AddCommand(downloadDocumentsCmd)
	rootCmd.AddCommand(forgeSubmitCmd)
	rootCmd.AddCommand(queryCmd)
}

// getAPIKey returns the API key from flags or environment.
func getAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	return cfg.GetString("api_key")
}

// getEndpoint returns the API base URL from flags or environment.
func getEndpoint() string {
	if endpoint != "" {
		return endpoint
	}
	if u := cfg.GetString("endpoint"); u != "" {
		return u
	}
	return api.DefaultBaseURL
}

// getEnvironment returns the rate-limit profile from flags or environment.
func getEnvironment() api.Environment {
	if environment != "" {
		return api.Environment(environment)
	}
	if env := cfg.GetString("environment"); env != "" {
		return api.Environment(env)
	}
	return api.EnvironmentDevelopment
}

// newClient creates an API client from the resolved configuration.
func newClient() (*anvil.Client, error) {
	key := getAPIKey()
	if key == "" {
		return nil, fmt.Errorf("no API key: use --api-key or set ANVIL_API_KEY")
	}

	opts := []anvil.Option{
		anvil.WithBaseURL(getEndpoint()),
		anvil.WithEnvironment(getEnvironment()),
		anvil.WithTimeout(timeout),
	}
	if debug {
		opts = append(opts, anvil.WithLogger(hclog.New(&hclog.LoggerOptions{
			Name:   "anvil",
			Level:  hclog.Debug,
			Output: os.Stderr,
		})))
	}

	return anvil.New(key, opts...)
}

// commandContext returns the request context for one CLI invocation.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// outputJSON prints the value as indented JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput loads a JSON payload from a file path, or stdin when path is
// "-" or empty.
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// decodeInput strictly decodes a JSON payload into out.
func decodeInput(data []byte, out any) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// writeDownload saves a binary response to path, or stdout when path is
// "-" or empty.
func writeDownload(download *anvil.FileDownload, path string) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(download.Data)
		return err
	}
	if err := os.WriteFile(path, download.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d bytes (%s) to %s\n", len(download.Data), download.ContentType, path)
	return nil
}
