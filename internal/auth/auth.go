// Package auth resolves bearer credentials to user ids. The identity
// provider itself is external infrastructure; this package only calls its
// user-info endpoint and threads the resolved id through request context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrInvalidToken is returned when the credential is missing, expired or
// rejected by the identity provider.
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier resolves one bearer token to the owning user id.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// HTTPVerifier asks the identity provider's user-info endpoint who the
// token belongs to.
type HTTPVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPVerifier creates a verifier against the given provider base URL.
// apiKey is the provider's public project key, sent alongside the user's
// token.
func NewHTTPVerifier(baseURL, apiKey string) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify implements Verifier.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", fmt.Errorf("Verify: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Verify: call identity provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrInvalidToken
	default:
		return "", fmt.Errorf("Verify: identity provider returned %d", resp.StatusCode)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("Verify: decode user: %w", err)
	}
	if user.ID == "" {
		return "", ErrInvalidToken
	}
	return user.ID, nil
}

// StaticVerifier maps tokens to user ids directly. Used in tests and for
// local development without an identity provider.
type StaticVerifier map[string]string

// Verify implements Verifier.
func (v StaticVerifier) Verify(ctx context.Context, token string) (string, error) {
	if userID, ok := v[token]; ok {
		return userID, nil
	}
	return "", ErrInvalidToken
}

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID stores the resolved user id in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID retrieves the resolved user id from the context.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
