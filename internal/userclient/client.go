// Package userclient resolves assignee emails to user ids by calling the
// user service. The caller's own bearer credential is forwarded verbatim so
// the user service enforces its authorization independently; no token is ever
// re-minted on a user's behalf.
package userclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// ErrUserNotFound is returned when the user service knows no matching email.
var ErrUserNotFound = errors.New("user not found")

// ErrPeerUnavailable is returned for transport failures and unexpected
// responses from the user service. Resolution is a single round trip with a
// bounded timeout and no retry.
var ErrPeerUnavailable = errors.New("user service unavailable")

// Resolver is an HTTP client for the user service's by-email lookup.
type Resolver struct {
	baseURL string
	client  *http.Client
}

// New creates a Resolver for the user service at baseURL.
func New(baseURL string, timeout time.Duration) *Resolver {
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type userResponse struct {
	ID int64 `json:"id"`
}

// ResolveByEmail looks up the user id for an email, authenticating with the
// forwarded Authorization header value.
func (r *Resolver) ResolveByEmail(ctx context.Context, email, authHeader string) (int64, error) {
	target := r.baseURL + "/api/users/by-email?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPeerUnavailable, err)
	}
	req.Header.Set(echo.HeaderAuthorization, authHeader)

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPeerUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, ErrUserNotFound
	default:
		return 0, fmt.Errorf("%w: status %d", ErrPeerUnavailable, resp.StatusCode)
	}

	var u userResponse
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(&u); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPeerUnavailable, err)
	}
	if u.ID <= 0 {
		return 0, fmt.Errorf("%w: empty user id", ErrPeerUnavailable)
	}
	return u.ID, nil
}
