package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// CSRFCookie is the cookie Django stores the anti-forgery secret in.
const CSRFCookie = "csrftoken"

// TokenSource supplies the anti-forgery token sent with mutating requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a token configured up front.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// CookieTokenSource fetches the token from the server's csrftoken cookie and
// caches it until Invalidate is called. The http.Client must share its
// cookie jar with the Doer so the cookie accompanies later POSTs.
type CookieTokenSource struct {
	client *http.Client
	url    *url.URL

	mu    sync.Mutex
	token string
}

// NewCookieTokenSource reads the cookie by GETting base + "csrf/".
func NewCookieTokenSource(base *url.URL, client *http.Client) *CookieTokenSource {
	return &CookieTokenSource{
		client: client,
		url:    base.ResolveReference(&url.URL{Path: "csrf/"}),
	}
}

func (s *CookieTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url.String(), nil)
	if err != nil {
		return "", &ValidationError{Op: "csrf", Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", classifyTransport(ctx, "csrf", 0, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode >= 500 {
		return "", &NetworkError{Op: "csrf", StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	for _, c := range resp.Cookies() {
		if c.Name == CSRFCookie && c.Value != "" {
			s.token = c.Value
			return s.token, nil
		}
	}
	if s.client.Jar != nil {
		for _, c := range s.client.Jar.Cookies(s.url) {
			if c.Name == CSRFCookie && c.Value != "" {
				s.token = c.Value
				return s.token, nil
			}
		}
	}
	return "", &ValidationError{Op: "csrf", StatusCode: resp.StatusCode, Err: fmt.Errorf("no %s cookie in response", CSRFCookie)}
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (s *CookieTokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
