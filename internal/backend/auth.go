package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lachlan2k/labour-console/internal/session"
)

// ErrNoToken means the backend accepted a login but returned no credential.
var ErrNoToken = errors.New("backend returned no token")

type AdminCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ContractorCredentials struct {
	PhoneNumber string   `json:"phoneNumber"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

type LoginResult struct {
	Token string `json:"token"`
}

func (c *Client) login(ctx context.Context, path string, body any) (*LoginResult, error) {
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, path, "", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, ErrNoToken
	}
	return &res, nil
}

func (c *Client) AdminLogin(ctx context.Context, creds AdminCredentials) (*LoginResult, error) {
	return c.login(ctx, "/admin/login", creds)
}

// ContractorLogin always logs in with the contractor role; the console only ever signs
// contractors in through this endpoint.
func (c *Client) ContractorLogin(ctx context.Context, creds ContractorCredentials) (*LoginResult, error) {
	creds.Role = "contractor"
	return c.login(ctx, "/auth/login", creds)
}

func logoutPath(role session.Role) (string, error) {
	switch role {
	case session.RoleAdmin:
		return "/admin/logout", nil
	case session.RoleVendor:
		return "/auth/logout", nil
	}
	return "", fmt.Errorf("no logout endpoint for role %q", role)
}

// Logout invalidates token on the backend, using the endpoint that matches role.
func (c *Client) Logout(ctx context.Context, role session.Role, token string) error {
	path, err := logoutPath(role)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, token, nil, nil)
}

type pushTokenRequest struct {
	FCMToken string `json:"fcmToken"`
}

// UpdatePushToken registers the device's push notification token for the session.
func (c *Client) UpdatePushToken(ctx context.Context, token, fcmToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/update-fcmtoken", token, pushTokenRequest{FCMToken: fcmToken}, nil)
}
