package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// CSRF handshake constants
const (
	CSRFCookiePath = "/sanctum/csrf-cookie"
	CSRFHeader     = "X-XSRF-TOKEN"
)

// ErrCSRFTokenNotFound means the handshake endpoint answered but no
// token cookie was set; the mutation must not be sent.
var ErrCSRFTokenNotFound = errors.New("csrf token cookie not found")

// EnsureCSRFToken performs the anti-forgery handshake required before
// any mutating call: a credentialed GET against the token-issuing
// endpoint on the API origin, then a read of the token cookie from the
// session jar. Tokens rotate server-side, so the handshake runs once
// per mutation and is never cached.
func (c *Client) EnsureCSRFToken(ctx context.Context) (string, error) {
	u := c.origin.String() + CSRFCookiePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create csrf request: %w", err)
	}
	req.Header.Set(AcceptHeader, JSONContentType)
	req.Header.Set(RequestedWithHeader, RequestedWithXMLHTTP)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("csrf handshake failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "csrf handshake rejected"}
	}

	token, ok := c.session.CookieValue(c.origin, c.csrfCookie)
	if !ok {
		log.Warn().
			Str("cookie", c.csrfCookie).
			Str("origin", c.origin.String()).
			Msg("CSRF cookie missing after handshake")
		return "", ErrCSRFTokenNotFound
	}

	return token, nil
}
