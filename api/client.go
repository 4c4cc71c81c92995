package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultTimeout = 15 * time.Second

// Client is the HTTP implementation of AuthAPI against the Eventry REST
// backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ AuthAPI = (*Client)(nil)

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing
// and for callers that need custom transports).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates an AuthAPI client for the given base URL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zerolog.Nop(),
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// VerifyToken asks the backend whether the token is still good. An explicit
// rejection (isConnected=false, HTTP 400/401) maps to ErrUnauthorized; a
// transport failure maps to ErrUnreachable.
func (c *Client) VerifyToken(ctx context.Context, token string) (*VerifyResult, error) {
	var result VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/verify", token, nil, &result); err != nil {
		return nil, errors.Wrap(err, "[VerifyToken]")
	}
	return &result, nil
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body := map[string]string{"email": email, "password": password}

	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &creds); err != nil {
		return nil, errors.Wrap(err, "[Login]")
	}
	return &creds, nil
}

// Logout invalidates the token server side.
func (c *Client) Logout(ctx context.Context, token string) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", token, nil, nil); err != nil {
		return errors.Wrap(err, "[Logout]")
	}
	return nil
}

// ConfirmAccount redeems an emailed confirmation code.
func (c *Client) ConfirmAccount(ctx context.Context, email, code string) (*Credentials, error) {
	body := map[string]string{"email": email, "code": code}

	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/confirm", "", body, &creds); err != nil {
		return nil, errors.Wrap(err, "[ConfirmAccount]")
	}
	return &creds, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "json.Marshal request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "http.NewRequestWithContext")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Err(err).Str("path", path).Msg("Request failed to reach backend")
		return errors.Wrap(ErrUnreachable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return errors.Wrap(ErrUnauthorized, errorReason(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errors.Wrap(ErrBadResponse, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(ErrBadResponse, err.Error())
	}
	return nil
}

// errorReason pulls the user-facing reason out of an error body, falling back
// to a generic message when the body is not the expected JSON shape.
func errorReason(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error == "" {
		return "request rejected"
	}
	return payload.Error
}
