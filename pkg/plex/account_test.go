package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAccountSignIn(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		response    string
		wantToken   string
		wantErr     bool
		wantUnauth  bool
		errContains string
	}{
		{
			name:      "success",
			status:    http.StatusCreated,
			response:  `{"user":{"id":1,"username":"bob","authToken":"tok-123"}}`,
			wantToken: "tok-123",
		},
		{
			name:       "bad credentials",
			status:     http.StatusUnauthorized,
			response:   `{"error":"Invalid email, username, or password."}`,
			wantErr:    true,
			wantUnauth: true,
		},
		{
			name:        "missing token",
			status:      http.StatusCreated,
			response:    `{"user":{"id":1,"username":"bob"}}`,
			wantErr:     true,
			errContains: "did not include a token",
		},
		{
			name:        "malformed body",
			status:      http.StatusCreated,
			response:    `not json`,
			wantErr:     true,
			errContains: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST request, got %s", r.Method)
				}
				if r.URL.Path != "/users/sign_in.json" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				user, pass, ok := r.BasicAuth()
				if !ok || user != "bob" || pass != "secret" {
					t.Errorf("unexpected basic auth %q/%q", user, pass)
				}
				if got := r.Header.Get("X-Plex-Client-Identifier"); got == "" {
					t.Error("expected client identifier header")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client, err := NewClient(Config{
				BaseURL:    "http://unused:32400",
				AccountURL: server.URL,
				HTTPClient: server.Client(),
			})
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			account, err := client.Account().SignIn(context.Background(), "bob", "secret")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantUnauth && !errors.Is(err, ErrUnauthorized) {
					t.Errorf("expected ErrUnauthorized, got %v", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.AuthToken != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, account.AuthToken)
			}
		})
	}
}

func TestAccountSignInRequiresCredentials(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://unused:32400"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if _, err := client.Account().SignIn(context.Background(), "", "secret"); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := client.Account().SignIn(context.Background(), "bob", ""); err == nil {
		t.Error("expected error for empty password")
	}
}
