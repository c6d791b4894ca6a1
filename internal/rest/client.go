package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"medfront.com/clinicdesk/internal/config"
	"medfront.com/clinicdesk/internal/metrics"
)

// HTTP header constants
const (
	AcceptHeader        = "Accept"
	ContentTypeHeader   = "Content-Type"
	AuthorizationHeader = "Authorization"
	RequestedWithHeader = "X-Requested-With"

	BearerPrefix         = "Bearer "
	JSONContentType      = "application/json"
	RequestedWithXMLHTTP = "XMLHttpRequest"
)

// Client wraps HTTP access to the clinic backend: base URL joining,
// default headers, bearer-token injection and the shared cookie jar.
// Every request goes through Do; there are no retries.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	origin     *url.URL
	session    *config.Session
	csrfCookie string
}

// NewClient creates a backend client bound to the given session.
func NewClient(cfg *config.Config, session *config.Session) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.APIBaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", cfg.APIBaseURL)
	}

	// The CSRF endpoint lives on the API origin, not under the API
	// path prefix.
	origin := &url.URL{Scheme: base.Scheme, Host: base.Host}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
			Jar:     session,
		},
		baseURL:    base,
		origin:     origin,
		session:    session,
		csrfCookie: cfg.CSRFCookieName,
	}, nil
}

// Do executes one request against the backend. Path is relative to
// the base URL; body may be nil. Header entries override the
// defaults. The response body is returned on any 2xx status; a non-2xx
// status yields an *APIError carrying the backend message.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, header http.Header) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(AcceptHeader, JSONContentType)
	req.Header.Set(RequestedWithHeader, RequestedWithXMLHTTP)
	if token := c.session.Token(); token != "" {
		req.Header.Set(AuthorizationHeader, BearerPrefix+token)
	}
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	endpoint := endpointLabel(path)
	startTime := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, method, startTime, 0)
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	metrics.RecordUpstreamRequest(endpoint, method, startTime, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Backend request failed")
		return nil, decodeAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.Do(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

// SendJSON issues a mutating request with a JSON body and decodes the
// response into out (out may be nil).
func (c *Client) SendJSON(ctx context.Context, method, path string, payload any, header http.Header, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body for %s: %w", path, err)
	}

	if header == nil {
		header = http.Header{}
	}
	header.Set(ContentTypeHeader, JSONContentType)

	body, err := c.Do(ctx, method, path, nil, bytes.NewReader(encoded), header)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

// Send issues a request with a pre-encoded body (e.g. multipart) and
// decodes the response into out (out may be nil).
func (c *Client) Send(ctx context.Context, method, path string, body io.Reader, contentType string, header http.Header, out any) error {
	if header == nil {
		header = http.Header{}
	}
	header.Set(ContentTypeHeader, contentType)

	respBody, err := c.Do(ctx, method, path, nil, body, header)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

// decodeAPIError extracts the backend envelope message from an error
// response, falling back to the standard status text.
func decodeAPIError(statusCode int, body []byte) *APIError {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return &APIError{StatusCode: statusCode, Message: envelope.Message}
	}
	return &APIError{StatusCode: statusCode, Message: http.StatusText(statusCode)}
}

// endpointLabel reduces a request path to its leading resource
// segment to keep metric cardinality bounded.
func endpointLabel(path string) string {
	trimmed := strings.TrimLeft(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		return trimmed[:i]
	}
	return trimmed
}
