// Package rest implements the store ports against the FinMan HTTP
// backend. Auth rides on forwarded browser cookies; the client itself
// keeps no session state.
package rest

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

	"finman/internal/core"
	"finman/internal/log"
	"finman/internal/store"
)

const (
	queriesPath = "/api/queries/"
	authPath    = "/api/auth/"

	// maxBodySize caps backend responses; the transaction list of a
	// heavy account stays well under this.
	maxBodySize = 8 << 20
)

// Client talks to the FinMan backend. It implements store.Gateway.
type Client struct {
	base   *url.URL
	hc     *http.Client
	logger *log.Logger
}

// New builds a Client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	return &Client{
		base:   u,
		hc:     &http.Client{Timeout: timeout},
		logger: logger.WithComponent("rest-client"),
	}, nil
}

// envelope is the backend's uniform response body.
type envelope struct {
	OK      bool               `json:"ok"`
	Error   string             `json:"error"`
	Queries []core.Transaction `json:"queries"`
	User    *store.User        `json:"user"`
}

type response struct {
	status  int
	cookies []*http.Cookie
	body    envelope
}

func (c *Client) do(ctx context.Context, op store.Op, method, path string, sess store.Session, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for _, ck := range sess {
		req.AddCookie(ck)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed",
			log.FieldMethod, method,
			log.FieldPath, path,
			log.FieldError, err.Error(),
		)
		return nil, store.NetworkError(op, err)
	}
	defer resp.Body.Close()

	out := &response{status: resp.StatusCode, cookies: resp.Cookies()}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, store.NetworkError(op, err)
	}
	// Error responses carry the same envelope; decode best-effort so
	// the server's message survives into the taxonomy.
	if len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		if err := json.Unmarshal(raw, &out.body); err != nil {
			c.logger.DebugContext(ctx, "undecodable backend body",
				log.FieldPath, path,
				log.FieldStatus, resp.StatusCode,
			)
		}
	}

	c.logger.DebugContext(ctx, "backend request",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatus, resp.StatusCode,
		log.FieldDuration, time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, store.FromStatus(op, resp.StatusCode, out.body.Error)
	}
	if !out.body.OK && out.body.Error != "" {
		return out, &store.APIError{Status: resp.StatusCode, Category: store.CategoryValidation, Message: out.body.Error}
	}
	return out, nil
}

// List fetches the caller's full transaction list.
func (c *Client) List(ctx context.Context, sess store.Session) ([]core.Transaction, error) {
	resp, err := c.do(ctx, store.OpFetch, http.MethodGet, queriesPath, sess, nil)
	if err != nil {
		return nil, err
	}
	if resp.body.Queries == nil {
		return []core.Transaction{}, nil
	}
	return resp.body.Queries, nil
}

// mutationPayload is the create/update wire shape. Price goes out as a
// bare JSON number, matching what the backend stores.
type mutationPayload struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Category string      `json:"category"`
	IsIncome bool        `json:"isIncome"`
	Time     string      `json:"time"`
}

func toPayload(in core.TransactionInput) mutationPayload {
	return mutationPayload{
		Name:     strings.TrimSpace(in.Name),
		Price:    json.Number(in.Price.String()),
		Category: in.Category,
		IsIncome: in.IsIncome,
		Time:     in.Time,
	}
}

// Create submits a new transaction. Input is validated locally first so
// bad forms never reach the backend.
func (c *Client) Create(ctx context.Context, sess store.Session, in core.TransactionInput) error {
	if err := in.Validate(); err != nil {
		return store.ValidationError(err)
	}
	_, err := c.do(ctx, store.OpCreate, http.MethodPost, queriesPath, sess, toPayload(in))
	return err
}

// Update replaces the transaction with the given id.
func (c *Client) Update(ctx context.Context, sess store.Session, id string, in core.TransactionInput) error {
	if strings.TrimSpace(id) == "" {
		return store.ValidationError(core.ErrInvalidTransaction)
	}
	if err := in.Validate(); err != nil {
		return store.ValidationError(err)
	}
	_, err := c.do(ctx, store.OpUpdate, http.MethodPut, queriesPath+url.PathEscape(id), sess, toPayload(in))
	return err
}

// Delete removes the transaction with the given id.
func (c *Client) Delete(ctx context.Context, sess store.Session, id string) error {
	if strings.TrimSpace(id) == "" {
		return store.ValidationError(core.ErrInvalidTransaction)
	}
	_, err := c.do(ctx, store.OpDelete, http.MethodDelete, queriesPath+url.PathEscape(id), sess, nil)
	return err
}

// Login authenticates by phone number and returns the cookies the
// backend issued.
func (c *Client) Login(ctx context.Context, phone, password string) (*store.AuthResult, error) {
	payload := map[string]string{"phone_number": phone, "password": password}
	resp, err := c.do(ctx, store.OpFetch, http.MethodPost, authPath+"login", nil, payload)
	if err != nil {
		return nil, err
	}
	return authResult(resp)
}

// Signup registers a new account and returns its session cookies.
func (c *Client) Signup(ctx context.Context, name, phone, password string) (*store.AuthResult, error) {
	payload := map[string]string{"name": name, "phone_number": phone, "password": password}
	resp, err := c.do(ctx, store.OpFetch, http.MethodPost, authPath+"signup", nil, payload)
	if err != nil {
		return nil, err
	}
	return authResult(resp)
}

func authResult(resp *response) (*store.AuthResult, error) {
	if resp.body.User == nil {
		return nil, &store.APIError{Status: resp.status, Category: store.CategoryServer, Message: "Server error. Please try again later."}
	}
	return &store.AuthResult{User: *resp.body.User, Cookies: resp.cookies}, nil
}

// Logout invalidates the backend session.
func (c *Client) Logout(ctx context.Context, sess store.Session) error {
	_, err := c.do(ctx, store.OpFetch, http.MethodPost, authPath+"logout", sess, map[string]string{})
	return err
}

// Me returns the account behind the session, or an auth error when the
// session is stale.
func (c *Client) Me(ctx context.Context, sess store.Session) (*store.User, error) {
	resp, err := c.do(ctx, store.OpFetch, http.MethodGet, authPath+"me", sess, nil)
	if err != nil {
		return nil, err
	}
	if resp.body.User == nil {
		return nil, store.FromStatus(store.OpFetch, http.StatusUnauthorized, "")
	}
	return resp.body.User, nil
}

var _ store.Gateway = (*Client)(nil)
