// Package api is the REST client for the storefront backend. It owns the
// transport concerns: base URL, request timeout, bearer attachment and
// envelope decoding. Interpretation of loosely-shaped payloads lives in
// internal/normalize and in the services.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-client/internal/config"
	"storefront-client/internal/dto"
	"storefront-client/internal/model"
)

// TokenSource yields the current bearer token, or "" when the session is
// unauthenticated. Requests never fail locally on a missing token.
type TokenSource func() string

// Envelope is the backend's uniform response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Response is a decoded backend reply. The raw body is retained because
// identifiers may live outside the envelope fields (see normalize probes).
type Response struct {
	Envelope
	StatusCode int
	Body       []byte

	doc     any
	dataDoc any
}

// Doc returns the whole body decoded as loose JSON, for probe-based
// extraction.
func (r *Response) Doc() any {
	if r.doc == nil && len(r.Body) > 0 {
		_ = json.Unmarshal(r.Body, &r.doc)
	}
	return r.doc
}

// DataDoc returns the envelope's data field decoded as loose JSON.
func (r *Response) DataDoc() any {
	if r.dataDoc == nil && len(r.Data) > 0 {
		_ = json.Unmarshal(r.Data, &r.dataDoc)
	}
	return r.dataDoc
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

func NewClient(cfg *config.API, tokens TokenSource) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		tokens:     tokens,
	}
}

// do issues one request and decodes the envelope. Transport-level problems
// return an error; any HTTP status with a readable body returns a Response,
// with Success forced false on non-2xx so callers can treat server failures
// uniformly.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request payload: %w", err)
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Body: raw}
	if len(raw) > 0 {
		// Tolerate bodies that are not the standard envelope; probing
		// still works off the raw document.
		_ = json.Unmarshal(raw, &out.Envelope)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out.Success = false
		if out.Message == "" {
			out.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
	}

	return out, nil
}

// -------- auth --------

func (c *Client) Login(ctx context.Context, email, password string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/register", req)
}

func (c *Client) VerifyAccount(ctx context.Context, email, code string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/verify", map[string]string{
		"email": email,
		"code":  code,
	})
}

func (c *Client) Logout(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil)
}

func (c *Client) Profile(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/auth/profile", nil)
}

func (c *Client) EditProfile(ctx context.Context, update dto.ProfileUpdate) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/edit-profile", update)
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/change-password", map[string]string{
		"current_password": current,
		"new_password":     next,
	})
}

func (c *Client) DeleteAccount(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/delete-account", nil)
}

func (c *Client) SendResetOTP(ctx context.Context, email string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/reset-password/send-otp", map[string]string{
		"email": email,
	})
}

func (c *Client) VerifyResetOTP(ctx context.Context, email, code string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/reset-password/verify-otp", map[string]string{
		"email": email,
		"code":  code,
	})
}

func (c *Client) SetNewPassword(ctx context.Context, resetToken, password string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/reset-password/set-new-password", map[string]string{
		"token":    resetToken,
		"password": password,
	})
}

// -------- addresses --------

func (c *Client) Addresses(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/addresses", nil)
}

// -------- orders --------

func (c *Client) CreateOrder(ctx context.Context, sub model.OrderSubmission) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/orders", sub)
}

func (c *Client) Orders(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/orders", nil)
}

func (c *Client) Order(ctx context.Context, id string) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/orders/"+id, nil)
}

func (c *Client) CancelOrder(ctx context.Context, id string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/orders/"+id+"/cancel", nil)
}

// -------- favorites --------

func (c *Client) FavoriteList(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/favorite-list", nil)
}

func (c *Client) ToggleFavorite(ctx context.Context, productID int64) (*Response, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/favorite/%d/toggle", productID), nil)
}
