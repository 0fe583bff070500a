// Package cms queries the headless CMS over GraphQL.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultURL     = "https://graphql.datocms.com/"
	DefaultTimeout = 10 * time.Second
	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 4 * 1024 * 1024
)

// ErrNoData is returned when a response carries neither data nor errors.
var ErrNoData = errors.New("cms: response without data")

type Client struct {
	url   string
	token string
	http  *http.Client
}

// New returns a client for the GraphQL endpoint at url. A timeout <= 0
// means DefaultTimeout.
func New(url, token string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{url: url, token: token, http: &http.Client{Timeout: timeout}}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query runs a GraphQL query and decodes its data object into out.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cms: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("cms: read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cms: status %d", resp.StatusCode)
	}

	var r response
	if err := json.Unmarshal(b, &r); err != nil {
		return fmt.Errorf("cms: decode: %w", err)
	}
	if len(r.Errors) > 0 {
		msgs := make([]string, 0, len(r.Errors))
		for _, e := range r.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("cms: %s", strings.Join(msgs, "; "))
	}
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return ErrNoData
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("cms: decode data: %w", err)
	}
	return nil
}
