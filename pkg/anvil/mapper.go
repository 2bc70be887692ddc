package anvil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/anvilco/go-anvil/pkg/api"
)

// graphqlEnvelope is the outer wrapper of every GraphQL response. A
// non-empty errors list means the call is a logical failure even when the
// transport status is 2xx.
type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message    string   `json:"message"`
	Name       string   `json:"name,omitempty"`
	Fields     []string `json:"fields,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

// restError is the REST error body shape: {name, message, fields?}.
type restError struct {
	Name    string   `json:"name"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Fixed code-to-kind translation table. Lookups are case-insensitive;
// unrecognized codes map to KindUnknown with the raw message preserved.
var errorKinds = map[string]ErrorKind{
	"NOT_FOUND":          KindNotFound,
	"NOTFOUNDERROR":      KindNotFound,
	"FORBIDDEN":          KindPermissionDenied,
	"UNAUTHORIZED":       KindPermissionDenied,
	"AUTHORIZATIONERROR": KindPermissionDenied,
	"BAD_USER_INPUT":     KindValidationFailed,
	"VALIDATION_ERROR":   KindValidationFailed,
	"VALIDATIONERROR":    KindValidationFailed,
	"RATE_LIMITED":       KindRateLimited,
	"TOO_MANY_REQUESTS":  KindRateLimited,
}

// kindForCode resolves a provider error code or name against the table.
func kindForCode(codes ...string) ErrorKind {
	for _, code := range codes {
		if code == "" {
			continue
		}
		if kind, ok := errorKinds[strings.ToUpper(code)]; ok {
			return kind
		}
	}
	return KindUnknown
}

// kindForStatus is the REST fallback when no recognizable code is present.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidationFailed
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindUnknown
	}
}

// decodeGraphQL unwraps a GraphQL envelope down to the payload at the
// operation's data path. A non-empty errors list always becomes an
// APIError; it never yields data.
func decodeGraphQL(op operation, resp *api.Response) (json.RawMessage, error) {
	var envelope graphqlEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, &APIError{
			Kind:       KindUnknown,
			Message:    fmt.Sprintf("%s: malformed response: %v", op.name, err),
			StatusCode: resp.StatusCode,
		}
	}

	if len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		kind := kindForCode(first.Extensions.Code, first.Name)
		if kind == KindUnknown && resp.StatusCode >= 400 {
			kind = kindForStatus(resp.StatusCode)
		}
		code := first.Extensions.Code
		if code == "" {
			code = first.Name
		}
		return nil, &APIError{
			Kind:       kind,
			Code:       code,
			Message:    first.Message,
			StatusCode: resp.StatusCode,
			Fields:     first.Fields,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Kind:       kindForStatus(resp.StatusCode),
			Message:    fmt.Sprintf("%s: unexpected status", op.name),
			StatusCode: resp.StatusCode,
		}
	}

	data := envelope.Data
	for _, key := range op.dataPath {
		var node map[string]json.RawMessage
		if err := json.Unmarshal(data, &node); err != nil {
			return nil, &APIError{
				Kind:       KindUnknown,
				Message:    fmt.Sprintf("%s: missing %q in response", op.name, key),
				StatusCode: resp.StatusCode,
			}
		}
		next, ok := node[key]
		if !ok || string(next) == "null" {
			return nil, &APIError{
				Kind:       KindNotFound,
				Message:    fmt.Sprintf("%s: %q not present in response", op.name, key),
				StatusCode: resp.StatusCode,
			}
		}
		data = next
	}
	return data, nil
}

// decodeGraphQLInto unwraps the envelope and decodes the payload into out.
func decodeGraphQLInto(op operation, resp *api.Response, out any) error {
	data, err := decodeGraphQL(op, resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{
			Kind:       KindUnknown,
			Message:    fmt.Sprintf("%s: decode response: %v", op.name, err),
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}

// decodeREST translates a REST response: non-2xx bodies become APIErrors
// through the same fixed table, 2xx bodies decode into out when given.
func decodeREST(op operation, resp *api.Response, out any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return &APIError{
				Kind:       KindUnknown,
				Message:    fmt.Sprintf("%s: decode response: %v", op.name, err),
				StatusCode: resp.StatusCode,
			}
		}
		return nil
	}

	var body restError
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.Message == "" {
		return &APIError{
			Kind:       kindForStatus(resp.StatusCode),
			Message:    fmt.Sprintf("%s: %s", op.name, strings.TrimSpace(string(resp.Body))),
			StatusCode: resp.StatusCode,
		}
	}

	kind := kindForCode(body.Name)
	if kind == KindUnknown {
		kind = kindForStatus(resp.StatusCode)
	}
	return &APIError{
		Kind:       kind,
		Code:       body.Name,
		Message:    body.Message,
		StatusCode: resp.StatusCode,
		Fields:     body.Fields,
	}
}

// decodeBinary surfaces a binary response as-is. Error statuses still go
// through REST error translation, binary endpoints report errors as JSON.
func decodeBinary(op operation, resp *api.Response) (*FileDownload, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeREST(op, resp, nil)
	}
	return &FileDownload{
		Data:        resp.Body,
		ContentType: resp.ContentType,
	}, nil
}

// flattenOrganizations merges per-organization lists into one slice using
// the supplied accessor.
func flattenOrganizations[T any](orgs []Organization, pick func(Organization) []T) []T {
	var out []T
	for _, org := range orgs {
		out = append(out, pick(org)...)
	}
	return out
}
