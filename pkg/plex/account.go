package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AccountService provides plex.tv account operations.
type AccountService struct {
	client *Client
}

// SignIn exchanges a plex.tv username and password for an account token.
//
// The returned Account.AuthToken can be passed to SetToken and stored for
// future runs. Rejected credentials return an error matching ErrUnauthorized.
//
// Example:
//
//	account, err := client.Account().SignIn(ctx, "user", "secret")
//	if errors.Is(err, plex.ErrUnauthorized) {
//	    fmt.Println("wrong username or password")
//	}
func (a *AccountService) SignIn(ctx context.Context, username, password string) (*Account, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, errors.New("plex: username and password are required")
	}

	body, err := a.client.call(ctx, request{
		method:   http.MethodPost,
		endpoint: a.client.accountURL + "/users/sign_in.json",
		accept:   "application/json",
		username: username,
		password: password,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		User Account `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("plex: failed to parse sign-in response: %w", err)
	}
	if resp.User.AuthToken == "" {
		return nil, errors.New("plex: sign-in response did not include a token")
	}
	return &resp.User, nil
}
