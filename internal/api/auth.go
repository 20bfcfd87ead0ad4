package api

import (
	"context"
	"net/http"
)

// User represents the authenticated OrgForge user.
// Preference fields mirror the server-side user record so the client
// can reconcile the active organization and theme after login.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccentColor string `json:"accentColor,omitempty"`
	BgTheme     string `json:"bgTheme,omitempty"`
	ActiveOrgID string `json:"activeOrgId,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	User User `json:"user"`

	// Token is the bearer credential. The backend also sets it as a
	// session cookie; the client captures whichever is present.
	Token string `json:"token,omitempty"`
}

// PreferencesRequest updates the server-persisted user preferences
type PreferencesRequest struct {
	AccentColor string `json:"accentColor,omitempty"`
	BgTheme     string `json:"bgTheme,omitempty"`
	ActiveOrgID string `json:"activeOrgId,omitempty"`
}

// Login authenticates and returns the user plus bearer credential
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	cookies := resp.Cookies()
	if err := parseResponse(resp, "/auth/login", &authResp); err != nil {
		return nil, err
	}

	c.captureCredential(&authResp, cookies)
	return &authResp, nil
}

// Register creates a new account and logs in
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	cookies := resp.Cookies()
	if err := parseResponse(resp, "/auth/register", &authResp); err != nil {
		return nil, err
	}

	c.captureCredential(&authResp, cookies)
	return &authResp, nil
}

// captureCredential stores the bearer token from the response body or,
// failing that, from the backend's session cookie.
func (c *Client) captureCredential(authResp *AuthResponse, cookies []*http.Cookie) {
	if authResp.Token == "" {
		for _, ck := range cookies {
			if ck.Name == "jwt" {
				authResp.Token = ck.Value
				break
			}
		}
	}
	if authResp.Token != "" {
		c.SetToken(authResp.Token)
	}
}

// Logout requests server-side session invalidation. Callers treat this
// as best-effort: local teardown has already happened by the time it runs.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}

// GetCurrentUser retrieves the currently authenticated user
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePreferences patches the server-persisted preferences and
// returns the authoritative echo.
func (c *Client) UpdatePreferences(ctx context.Context, req PreferencesRequest) (*User, error) {
	var user User
	if err := c.patch(ctx, "/auth/preferences", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
