package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrRefreshRejected is returned when the server refuses the refresh token.
var ErrRefreshRejected = errors.New("refresh token rejected")

// Refresher exchanges a refresh token for a new access token and installs it
// on the client. It implements recovery.TokenRefresher.
type Refresher struct {
	client *Client
	path   string

	mu           sync.Mutex
	refreshToken string
}

// NewRefresher creates a refresher. An empty path uses /auth/refresh.
func NewRefresher(client *Client, path, refreshToken string) *Refresher {
	if path == "" {
		path = "/auth/refresh"
	}
	return &Refresher{client: client, path: path, refreshToken: refreshToken}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh performs one exchange. Concurrent calls are serialized.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refreshToken == "" {
		return fmt.Errorf("failed to refresh token: %w", ErrRefreshRejected)
	}

	var resp refreshResponse
	err := r.client.Do(ctx, http.MethodPost, r.path, refreshRequest{RefreshToken: r.refreshToken}, &resp)
	if err != nil {
		var status interface{ HTTPStatus() int }
		if errors.As(err, &status) &&
			(status.HTTPStatus() == http.StatusUnauthorized || status.HTTPStatus() == http.StatusForbidden) {
			return fmt.Errorf("failed to refresh token: %w", ErrRefreshRejected)
		}
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("failed to refresh token: empty access token")
	}

	r.client.SetToken(resp.AccessToken)
	if resp.RefreshToken != "" {
		r.refreshToken = resp.RefreshToken
	}
	return nil
}
