package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 1 << 20

// Call is one HTTP round trip to the GeoGem server.
type Call struct {
	// Op names the logical operation, e.g. "check_answer".
	Op     string
	Method string
	Path   string
	Query  url.Values
	// Form is sent form-encoded on POST. The anti-forgery token is added by
	// the transport and never stored here.
	Form url.Values
}

// Result is the raw server reply. It is returned alongside typed errors for
// 4xx and 5xx responses so decorators can record it.
type Result struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Doer executes calls. Decorators wrap a Doer the same way the LLM
// providers are wrapped.
type Doer interface {
	Do(ctx context.Context, call Call) (*Result, error)
}

// HTTPDoer is the base Doer talking HTTP.
type HTTPDoer struct {
	base      *url.URL
	client    *http.Client
	tokens    TokenSource
	userAgent string
}

// NewHTTPDoer creates a Doer for the server at base. The client should carry
// a cookie jar when tokens is a CookieTokenSource.
func NewHTTPDoer(base *url.URL, client *http.Client, tokens TokenSource, userAgent string) *HTTPDoer {
	if client == nil {
		client = http.DefaultClient
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &HTTPDoer{base: base, client: client, tokens: tokens, userAgent: userAgent}
}

func (d *HTTPDoer) Do(ctx context.Context, call Call) (*Result, error) {
	method := call.Method
	if method == "" {
		method = http.MethodPost
	}
	u := d.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(call.Path, "/")})
	if len(call.Query) > 0 {
		u.RawQuery = call.Query.Encode()
	}

	var body io.Reader
	var token string
	if method == http.MethodPost {
		tok, err := d.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		token = tok
		form := url.Values{}
		for k, v := range call.Form {
			form[k] = append([]string(nil), v...)
		}
		if token != "" {
			form.Set("csrfmiddlewaretoken", token)
		}
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &ValidationError{Op: call.Op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		// Django checks the referer on HTTPS requests.
		req.Header.Set("Referer", d.base.String())
		if token != "" {
			req.Header.Set("X-CSRFToken", token)
		}
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, call.Op, time.Since(start), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	res := &Result{URL: u.String(), StatusCode: resp.StatusCode, Body: raw}
	if err != nil {
		return res, classifyTransport(ctx, call.Op, time.Since(start), err)
	}

	switch {
	case resp.StatusCode >= 500:
		return res, &NetworkError{Op: call.Op, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	case resp.StatusCode == http.StatusForbidden:
		if inv, ok := d.tokens.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
		return res, &ValidationError{Op: call.Op, StatusCode: resp.StatusCode, Body: raw, Err: errors.New("forbidden (anti-forgery token rejected?)")}
	case resp.StatusCode >= 400:
		return res, &ValidationError{Op: call.Op, StatusCode: resp.StatusCode, Body: raw, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return res, nil
}

// classifyTransport maps a client error onto the taxonomy.
func classifyTransport(ctx context.Context, op string, elapsed time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, After: elapsed, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: op, After: elapsed, Err: err}
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &NetworkError{Op: op, Err: err}
}
