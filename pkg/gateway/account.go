package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

type Account struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Session struct {
	ID        string `json:"$id"`
	AccountID string `json:"userId"`
	Expire    string `json:"expire"`
}

// CreateAccount registers a new account with the remote service.
func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (Account, error) {
	payload := map[string]string{
		"userId":   NewID(),
		"email":    email,
		"password": password,
		"name":     name,
	}

	var account Account
	err := c.doJSON(ctx, http.MethodPost, "/account", payload, &account, http.StatusCreated, http.StatusOK)
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

// CreateSession signs in with email and password. An unauthorized response
// is reported as invalid credentials rather than a missing session.
func (c *Client) CreateSession(ctx context.Context, email, password string) (Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	var session Session
	err := c.doJSON(ctx, http.MethodPost, "/account/sessions/email", payload, &session, http.StatusCreated, http.StatusOK)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return Session{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return Session{}, err
	}
	return session, nil
}

// DeleteSession signs out the current session.
func (c *Client) DeleteSession(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/account/sessions/current", nil, nil, "", nil, http.StatusNoContent, http.StatusOK)
}

// GetCurrentAccount returns the account of the active session.
func (c *Client) GetCurrentAccount(ctx context.Context) (Account, error) {
	var account Account
	err := c.do(ctx, http.MethodGet, "/account", nil, nil, "", &account)
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

// AvatarInitialsURL returns the service's generated initials avatar for the
// given display name. Pure URL construction, no request is made.
func (c *Client) AvatarInitialsURL(name string) string {
	query := url.Values{}
	query.Set("name", name)
	query.Set("project", c.projectID)
	return c.endpoint + "/avatars/initials?" + query.Encode()
}
