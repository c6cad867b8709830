// Package client is the gateway to the clinic-stock REST API. It attaches the
// bearer token to every call and maps failures onto the apperr taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Spok95/clinic-stock/internal/apperr"
)

// Credentials supplies the bearer token and is told when the server stops
// accepting it.
type Credentials interface {
	Token() string
	Invalidate()
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithCredentials returns a copy of c that authenticates with cr.
func (c *Client) WithCredentials(cr Credentials) *Client {
	cp := *c
	cp.creds = cr
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, query, rdr)
	if err != nil {
		return err
	}
	c.authorize(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// postForm serves the credential exchange, so no token is attached.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.creds == nil {
		return
	}
	if tok := c.creds.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

func (c *Client) send(req *http.Request, out any) error {
	op := req.Method + " " + req.URL.Path
	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.NetworkFailure{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.NetworkFailure{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && req.Header.Get("Authorization") != "":
		if c.creds != nil {
			c.creds.Invalidate()
		}
		return fmt.Errorf("%s: %w", op, apperr.ErrAuthExpired)
	case resp.StatusCode >= 300:
		return &apperr.ServerRejection{Status: resp.StatusCode, Message: rejectionMessage(resp.StatusCode, raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", op, err)
	}
	return nil
}

// rejectionMessage extracts {"detail": ...} from an error body.
func rejectionMessage(status int, raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		return string(body.Detail)
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var sr *apperr.ServerRejection
	return errors.As(err, &sr) && sr.Status == http.StatusNotFound
}
