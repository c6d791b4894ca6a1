package config

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
)

// Session owns the credentials shared by every outgoing request: the
// bearer token and the cookie jar the backend's session and CSRF
// cookies live in. It is created once at startup and cleared on
// logout; nothing else may hold token state.
type Session struct {
	mu    sync.RWMutex
	token string
	jar   *cookiejar.Jar
}

// NewSession creates a session with the given bearer token. An empty
// token means unauthenticated requests.
func NewSession(token string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Session{token: token, jar: jar}, nil
}

// Token returns the current bearer token, or "" when none is set.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the bearer token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetCookies implements http.CookieJar by delegating to the current
// jar, so an http.Client can hold the Session itself and survive
// Clear() swapping the jar out.
func (s *Session) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	jar.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	return jar.Cookies(u)
}

// CookieValue scans the cookies stored for origin and returns the
// URL-decoded value of the cookie named name. Matching is
// case-insensitive and also accepts the "X-" prefixed variant some
// backends set.
func (s *Session) CookieValue(origin *url.URL, name string) (string, bool) {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()

	for _, c := range jar.Cookies(origin) {
		if !strings.EqualFold(c.Name, name) && !strings.EqualFold(c.Name, "X-"+name) {
			continue
		}
		value, err := url.QueryUnescape(c.Value)
		if err != nil {
			// A cookie that fails to decode is unusable as a token
			return "", false
		}
		return value, true
	}
	return "", false
}

// Clear drops the token and all cookies. Used on logout.
func (s *Session) Clear() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("failed to reset cookie jar: %w", err)
	}
	s.mu.Lock()
	s.token = ""
	s.jar = jar
	s.mu.Unlock()
	return nil
}
