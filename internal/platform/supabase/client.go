// Package supabase is the client side of the hosted backend: a GoTrue-style
// auth API under /auth/v1 and a PostgREST-style row API under /rest/v1.
// Only the contract the app consumes is implemented.
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

	"go.uber.org/zap"

	"santacall/internal/platform/clock"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"
)

type Options struct {
	URL        string
	AnonKey    string
	HTTPClient *http.Client
	// Storage persists the session between runs. Nil keeps it in memory.
	Storage SessionStorage
	Clock   clock.Clock
	Logger  *zap.Logger
}

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     *zap.Logger

	Auth *Auth
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.URL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", opts.URL)
	}
	if opts.AnonKey == "" {
		return nil, fmt.Errorf("anon key is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Client{
		baseURL: base.String(),
		anonKey: opts.AnonKey,
		http:    opts.HTTPClient,
		log:     opts.Logger,
	}
	c.Auth = newAuth(c, opts.Storage, storageKey(base.Hostname()), opts.Clock)
	return c, nil
}

// storageKey mirrors the key layout of the official clients:
// sb-<project ref>-auth-token.
func storageKey(host string) string {
	ref := strings.SplitN(host, ".", 2)[0]
	return "sb-" + ref + "-auth-token"
}

type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   any
	bearer string
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	var payload io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.anonKey)
	bearer := r.bearer
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp.StatusCode, raw)
		c.log.Debug("backend request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
