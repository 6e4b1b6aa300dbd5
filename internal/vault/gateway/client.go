// Package gateway is the boundary between user intents and the backend: it
// translates upload/edit/delete into REST round trips and folds the confirmed
// result back into the store with a full refresh. Nothing is patched locally,
// so the store never shows a state the backend disagrees with.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/errors"
	"github.com/ervall/mediavault/internal/vault/store"
)

// Session is the credential object acquired on login and cleared on logout
// or expiry. It is passed explicitly, never stashed in ambient state.
type Session struct {
	Token string
	Role  string
}

// IsAdmin reports whether the session carries the admin role claim. The
// claim is opaque input from the backend; the client does not verify it
// cryptographically.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == "admin"
}

// Client is the mutation gateway over the backend REST interface.
type Client struct {
	baseURL string
	http    *http.Client
	store   *store.Store
	logger  hclog.Logger

	mu      sync.RWMutex
	session *Session
}

// NewClient creates a gateway against the given base URL, feeding the given
// store.
func NewClient(baseURL string, st *store.Store) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
		store:   st,
		logger:  hclog.New(&hclog.LoggerOptions{Name: "gateway", Level: hclog.Info}),
	}
}

// Login exchanges a PIN for a session and performs the initial refresh.
func (c *Client) Login(ctx context.Context, pin string) (*Session, error) {
	if pin == "" {
		return nil, errors.NewValidationError("PIN is required", "pin")
	}

	body, err := json.Marshal(map[string]string{"pin": pin})
	if err != nil {
		return nil, errors.NewInternalError("encode login", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternalError("build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("login request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapStatus(resp)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewNetworkError("malformed login response", err)
	}

	session := &Session{Token: result.AccessToken, Role: result.Role}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		return session, err
	}
	return session, nil
}

// Logout clears the session. The store keeps its last contents; the caller
// decides what a logged-out view shows.
func (c *Client) Logout() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// Session returns the current credential object, nil when logged out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Refresh fetches both media lists and swaps them into the store as one
// atomic replacement, videos first. This is the only store write path.
func (c *Client) Refresh(ctx context.Context) error {
	videos, err := c.fetchList(ctx, "/api/v1/media/videos")
	if err != nil {
		return err
	}
	audio, err := c.fetchList(ctx, "/api/v1/media/audio")
	if err != nil {
		return err
	}

	items := make([]database.MediaItem, 0, len(videos)+len(audio))
	items = append(items, videos...)
	items = append(items, audio...)
	c.store.ReplaceAll(items)
	return nil
}

func (c *Client) fetchList(ctx context.Context, path string) ([]database.MediaItem, error) {
	req, err := c.authedRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapStatus(resp)
	}

	var items []database.MediaItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, errors.NewNetworkError("malformed list response", err)
	}
	return items, nil
}

func (c *Client) authedRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.NewInternalError("build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s := c.Session(); s != nil {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	return req, nil
}

// mapStatus converts a non-OK response into the error taxonomy. A 401 also
// clears the session: the token is spent.
func (c *Client) mapStatus(resp *http.Response) error {
	detail := struct {
		Error string `json:"error"`
	}{}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&detail)
	message := detail.Error
	if message == "" {
		message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return errors.NewValidationError(message, "")
	case http.StatusUnauthorized:
		c.Logout()
		return errors.NewAuthError(message)
	case http.StatusForbidden:
		return errors.NewForbiddenError(message)
	case http.StatusNotFound:
		return errors.NewNotFoundError("media", "")
	default:
		return errors.NewNetworkError(fmt.Sprintf("backend returned %s", resp.Status), nil)
	}
}
