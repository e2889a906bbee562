// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the JSON request helpers shared by all sources.
// Failures are split into two kinds: TransportError for anything that
// prevented a usable response, DecodeError for a response body that does not
// match the expected schema.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxErrorBody bounds how much of a non-2xx body is kept for the error message.
const maxErrorBody = 512

// TransportError reports a network failure or a non-2xx HTTP status.
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that could not be decoded.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client issues JSON requests with a fixed User-Agent.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// GetJSON sends a GET to base with params as the query string and decodes
// the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, base string, params url.Values, out any) error {
	reqURL := base
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &TransportError{URL: reqURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	return c.do(req, out)
}

// PostJSON sends body encoded as JSON to reqURL and decodes the JSON
// response into out.
func (c *Client) PostJSON(ctx context.Context, reqURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &TransportError{URL: reqURL, Err: fmt.Errorf("encoding request body: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{URL: reqURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	reqURL := req.URL.String()
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{URL: reqURL, Err: err}
	}
	return nil
}
