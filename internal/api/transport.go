package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/xelth-com/mfgtrack/internal/models"
	"go.uber.org/zap"
)

// Envelope is the wrapper every backend JSON response uses
type Envelope struct {
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// Pagination is optional list metadata in the envelope
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// result is the unwrapped payload of a successful call
type result struct {
	Payload    json.RawMessage
	Pagination *Pagination
}

// request performs one backend call. It never retries.
func (c *LiveClient) request(ctx context.Context, method, endpoint string, query url.Values, body any) (*result, error) {
	res, err := c.doRequest(ctx, method, endpoint, query, body)
	if err != nil {
		c.logger.Error("API request failed",
			zap.String("endpoint", endpoint),
			zap.String("method", method),
			zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (c *LiveClient) doRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*result, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request for %s: %w", endpoint, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, &EndpointNotFoundError{Endpoint: endpoint}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailedError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  failureMessage(resp, raw),
		}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &RequestFailedError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("invalid JSON response from %s: %v", endpoint, err),
		}
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request to %s was not successful", endpoint)
		}
		return nil, &ApplicationError{Endpoint: endpoint, Message: msg}
	}

	payload := raw
	if len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}
	return &result{Payload: payload, Pagination: env.Pagination}, nil
}

// failureMessage extracts the best description of a non-2xx answer:
// the JSON message, then the raw text, then a generic line.
func failureMessage(resp *http.Response, raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !json.Valid(raw) {
		return text
	}
	return fmt.Sprintf("API request failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

// decodeRows reads a list payload. Besides a bare array it accepts an object
// wrapping the array under one of the usual keys.
func decodeRows(payload json.RawMessage, keys ...string) ([]models.Row, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []models.Row{}, nil
	}
	if trimmed[0] == '[' {
		var rows []models.Row
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode rows: %w", err)
		}
		return rows, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	for _, k := range append(keys, "items", "rows", "records", "data") {
		if inner, ok := wrapper[k]; ok && len(inner) > 0 && inner[0] == '[' {
			return decodeRows(inner)
		}
	}
	return []models.Row{}, nil
}

// decodeRow reads a single-record payload, unwrapping {"<key>": {...}} when present
func decodeRow(payload json.RawMessage, keys ...string) (models.Row, error) {
	var row models.Row
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	for _, k := range keys {
		if inner, ok := row[k].(map[string]any); ok {
			return models.Row(inner), nil
		}
	}
	return row, nil
}

// hasRecord reports whether a decoded payload looks like an entity rather
// than the bare envelope that is returned when data is absent
func hasRecord(r models.Row) bool {
	_, isEnvelope := r["success"]
	_, hasID := r.Lookup("id")
	return hasID && !isEnvelope
}
