// Package identity is the thin client for the external authentication
// service. The onboarding flow treats it as a black box: creation is
// attempted at most once per onboarding call, and the returned identity id
// is carried as an opaque capability from then on.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrDuplicateEmail = errors.New("identity already exists for email")
	ErrWeakCredential = errors.New("credential rejected by identity service")
	ErrUnavailable    = errors.New("identity service unavailable")
)

// Client talks to the auth service over HTTP. Requests carry a short-lived
// HS256 service token so the auth service can tell this backend apart from
// end-user traffic.
type Client struct {
	baseURL string
	secret  []byte
	httpc   *http.Client
	now     func() time.Time
}

func NewClient(baseURL string, secret []byte) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

type createIdentityRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type createIdentityResponse struct {
	ID string `json:"id"`
}

// CreateIdentity provisions an authentication account for the invited email
// and returns the new identity id. Error kinds: ErrDuplicateEmail (the email
// already has an account), ErrWeakCredential (password rejected), or
// ErrUnavailable for anything else.
func (c *Client) CreateIdentity(ctx context.Context, email, password string, metadata map[string]string) (string, error) {
	body, err := json.Marshal(createIdentityRequest{Email: email, Password: password, Metadata: metadata})
	if err != nil {
		return "", fmt.Errorf("encode identity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/identities", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.serviceToken()
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict:
		return "", ErrDuplicateEmail
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return "", ErrWeakCredential
	default:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out createIdentityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode identity response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: empty identity id in response", ErrUnavailable)
	}
	return out.ID, nil
}

func (c *Client) serviceToken() (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    "tenantflow",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}
