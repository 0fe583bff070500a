// Package supabase calls Postgres functions exposed through PostgREST.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 4 * 1024 * 1024
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a client for the project at baseURL. A timeout <= 0 means
// DefaultTimeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// RPC invokes the function fn with args and decodes the result into out.
func (c *Client) RPC(ctx context.Context, fn string, args, out any) error {
	if args == nil {
		args = map[string]any{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return err
	}
	u := c.baseURL + "/rest/v1/rpc/" + url.PathEscape(fn)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", fn, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("rpc %s: read: %w", fn, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pgErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(b, &pgErr)
		return fmt.Errorf("rpc %s: status %d: %s", fn, resp.StatusCode, pgErr.Message)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("rpc %s: decode: %w", fn, err)
	}
	return nil
}
