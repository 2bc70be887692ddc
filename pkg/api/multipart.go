package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
)

// Upload is one file part of a multipart GraphQL request. Path names the
// null placeholder inside the variables it replaces, e.g.
// "variables.files.0.file".
type Upload struct {
	Path        string
	Filename    string
	ContentType string
	Data        []byte
}

// encodeMultipart packages a GraphQL operation and its uploads following
// the GraphQL multipart request spec
// (github.com/jaydenseric/graphql-multipart-request-spec): an "operations"
// part with the document and variables, a "map" part naming the variable
// path each file replaces, then one part per file keyed by index.
func encodeMultipart(document string, variables map[string]any, files []Upload) (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	operations, err := json.Marshal(map[string]any{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return nil, "", fmt.Errorf("encode operations: %w", err)
	}
	if err := w.WriteField("operations", string(operations)); err != nil {
		return nil, "", fmt.Errorf("write operations part: %w", err)
	}

	fileMap := make(map[string][]string, len(files))
	for i, f := range files {
		fileMap[strconv.Itoa(i)] = []string{f.Path}
	}
	mapped, err := json.Marshal(fileMap)
	if err != nil {
		return nil, "", fmt.Errorf("encode file map: %w", err)
	}
	if err := w.WriteField("map", string(mapped)); err != nil {
		return nil, "", fmt.Errorf("write map part: %w", err)
	}

	for i, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, strconv.Itoa(i), f.Filename))
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %d: %w", i, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write file part %d: %w", i, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
