package rbclient

// Session lifecycle. Token issuance is the backend's job; this file only
// stores, attaches and clears the bearer credential the backend hands out.

import (
	"context"
	"net/http"

	"github.com/royalburger/client-go/internal/gateway"
	"github.com/royalburger/client-go/internal/types"
)

// LoginResult is the outcome of Login or Verify2FA.
type LoginResult struct {
	// Requires2FA is set when the backend accepted the password but wants a
	// second factor before issuing a token.
	Requires2FA bool

	// User is the profile returned alongside the token, when present.
	User *UserProfile
}

// Login authenticates with email and password. On success the bearer token
// and profile are stored and attached to subsequent requests.
//
// A 401 here is the login failure itself, not a session expiry: an existing
// unrelated session is never wiped by a failed login attempt, and the error
// carries the server's specific reason (wrong password, inactive account).
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp types.LoginResponse
	err := c.gw.DecodeJSON(ctx, "/api/auth/login", gateway.Options{
		Method:   http.MethodPost,
		Body:     types.LoginRequest{Email: email, Password: password},
		SkipAuth: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.acceptSession(&resp)
}

// Verify2FA completes a two-factor login with the emailed code.
func (c *Client) Verify2FA(ctx context.Context, email, code string) (*LoginResult, error) {
	var resp types.LoginResponse
	err := c.gw.DecodeJSON(ctx, "/api/auth/verify-2fa", gateway.Options{
		Method:   http.MethodPost,
		Body:     types.Verify2FARequest{Email: email, Code: code},
		SkipAuth: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.acceptSession(&resp)
}

func (c *Client) acceptSession(resp *types.LoginResponse) (*LoginResult, error) {
	if resp.Requires2FA {
		return &LoginResult{Requires2FA: true}, nil
	}
	if token := resp.BearerToken(); token != "" {
		c.creds.SetToken(token)
		c.creds.SetUser(resp.User)
		c.log.Info().Msg("session established")
	}
	return &LoginResult{User: resp.User}, nil
}

// LogoutResult distinguishes the local guarantee from the server's
// acknowledgement: local state is always purged, the server call is best
// effort.
type LogoutResult struct {
	ServerAcknowledged bool
}

// Logout clears the stored credential. The server-side revocation is best
// effort and never fails the caller.
func (c *Client) Logout(ctx context.Context) *LogoutResult {
	res := &LogoutResult{}
	_, err := c.gw.Request(ctx, "/api/auth/logout", gateway.Options{
		Method:    http.MethodPost,
		SkipRetry: true,
	})
	if err != nil {
		c.log.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
	} else {
		res.ServerAcknowledged = true
	}
	c.creds.LogoutLocal()
	return res
}

// IsAuthenticated reports whether a bearer token is stored.
func (c *Client) IsAuthenticated() bool { return c.creds.Token() != "" }

// CurrentUser returns the cached profile, or nil when logged out or when
// the cached JSON is unreadable.
func (c *Client) CurrentUser() *UserProfile { return c.creds.User() }
