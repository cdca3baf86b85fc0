// Package questline provides a Go client for the questline HTTP API. The
// login handshake runs entirely client-side: the password is folded into a
// salted hash and a proof over the server's single-use nonce, and never
// leaves the process.
package questline

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/questline/questline/internal/proof"
)

// Client talks to a questline server on behalf of a single user. It is safe
// for concurrent use; the session token is refreshed server-side on every
// authenticated call.
type Client struct {
	baseURL string
	http    *http.Client

	mu       sync.Mutex
	username string
	token    string
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login performs the two-step handshake and stores the session token on the
// client. Returns ErrUnknownUser, ErrChallengeExpired or ErrLoginRejected
// for the corresponding server answers.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var challenge struct {
		NonceID      string `json:"nonce_id"`
		ServerNonce  uint64 `json:"server_nonce"`
		PasswordSalt string `json:"password_salt"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login/begin",
		map[string]string{"username": username}, &challenge, false)
	if err != nil {
		return mapLoginError(err)
	}

	clientNonce, err := randomNonce()
	if err != nil {
		return fmt.Errorf("generate client nonce: %w", err)
	}

	stored := proof.HashPassword(password, challenge.PasswordSalt)
	var session struct {
		Token string `json:"token"`
	}
	err = c.do(ctx, http.MethodPost, "/auth/login/complete", map[string]any{
		"username":     username,
		"proof":        proof.Compute(challenge.ServerNonce, clientNonce, stored),
		"nonce_id":     challenge.NonceID,
		"client_nonce": clientNonce,
	}, &session, false)
	if err != nil {
		return mapLoginError(err)
	}

	c.mu.Lock()
	c.username = username
	c.token = session.Token
	c.mu.Unlock()
	return nil
}

// Logout retires the session server-side and clears the client state. Safe
// to call on an already-dead session.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	username, token := c.username, c.token
	c.username, c.token = "", ""
	c.mu.Unlock()

	if token == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/auth/logout",
		map[string]string{"username": username, "token": token}, nil, false)
}

// Token returns the current session token, or "" when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// statusError carries a server error response until the call site maps it
// onto a sentinel.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%s (status %d)", e.message, e.code)
	}
	return fmt.Sprintf("request failed with status %d", e.code)
}

// do sends one JSON request and decodes the response into out. Authed calls
// carry the session headers; a 401 clears the stored token.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var username, token string
	if authed {
		c.mu.Lock()
		username, token = c.username, c.token
		c.mu.Unlock()
		if token == "" {
			return ErrNotLoggedIn
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("X-Auth-Username", username)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		if authed && resp.StatusCode == http.StatusUnauthorized {
			c.mu.Lock()
			if c.token == token {
				c.username, c.token = "", ""
			}
			c.mu.Unlock()
			return ErrSessionExpired
		}

		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &statusError{code: resp.StatusCode, message: payload.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// mapLoginError converts handshake status codes onto the package sentinels.
func mapLoginError(err error) error {
	se, ok := err.(*statusError)
	if !ok {
		return err
	}
	switch se.code {
	case http.StatusNotFound:
		return ErrUnknownUser
	case http.StatusGone:
		return ErrChallengeExpired
	case http.StatusForbidden:
		return ErrLoginRejected
	}
	return err
}

// mapQuestError converts quest API status codes onto the package sentinels.
func mapQuestError(err error) error {
	if se, ok := err.(*statusError); ok && se.code == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}

func randomNonce() (uint64, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(raw[:]), nil
}
