// Package authclient resolves a caller's identity for the other SistenFrota
// services (vehicles, maintenance). The default verifier asks the auth
// service over HTTP; LocalVerifier checks the access-token signature without
// a network hop. Call sites depend on the Verifier interface so the two can
// be swapped without changes.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("token not provided")

// Identity is the resolved caller.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Verifier interface {
	// Verify resolves the Authorization header value ("Bearer <token>") into
	// an identity. A *StatusError means the auth service rejected the token
	// and its response should be proxied to the caller verbatim.
	Verify(ctx context.Context, authorization string) (*Identity, error)
}

// StatusError carries a non-2xx auth-service response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("auth service returned status %d", e.StatusCode)
}

// RemoteVerifier treats a successful response from the auth service's /me
// endpoint as ground truth; it performs no local signature verification.
type RemoteVerifier struct {
	baseURL string
	client  *http.Client
}

func NewRemoteVerifier(baseURL string) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, authorization string) (*Identity, error) {
	if authorization == "" {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", authorization)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	var payload struct {
		User Identity `json:"user"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	return &payload.User, nil
}

func bearerToken(authorization string) (string, bool) {
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// LocalVerifier validates the access-token signature with the shared secret
// instead of calling the auth service. It cannot see revocations or account
// deactivation, so it trades freshness for latency.
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(accessSecret string) *LocalVerifier {
	return &LocalVerifier{secret: []byte(accessSecret)}
}

type accessClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (v *LocalVerifier) Verify(ctx context.Context, authorization string) (*Identity, error) {
	if authorization == "" {
		return nil, ErrNoToken
	}
	tokenString, ok := bearerToken(authorization)
	if !ok {
		return nil, &StatusError{
			StatusCode: http.StatusUnauthorized,
			Body:       []byte(`{"error":"malformed token"}`),
		}
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, &StatusError{
			StatusCode: http.StatusUnauthorized,
			Body:       []byte(`{"error":"token invalid"}`),
		}
	}

	return &Identity{ID: claims.UserID, Role: claims.Role}, nil
}
