package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/yungbote/voterguide-backend/internal/pkg/ctxutil"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// HTTPError is a non-2xx response from an upstream API.
type HTTPError struct {
	StatusCode int
	Body       string
	// Message is the upstream's own error text when it could be extracted.
	Message string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

// StatusOf returns the upstream status code carried by err, or 0.
func StatusOf(err error) int {
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

func IsRateLimited(err error) bool {
	return StatusOf(err) == http.StatusTooManyRequests
}

func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// RedactURLError drops the query string and userinfo from the URL carried
// by a *url.Error, since credentials travel there for keyed APIs.
func RedactURLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) || ue.URL == "" {
		return err
	}
	if u, perr := url.Parse(ue.URL); perr == nil {
		u.RawQuery = ""
		u.User = nil
		u.Fragment = ""
		ue.URL = u.String()
	} else {
		ue.URL = "[redacted]"
	}
	return err
}

// Request describes one JSON round trip.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    any
	// ErrorMessage extracts a human readable message from a non-2xx body.
	ErrorMessage func(raw []byte) string
}

// DoJSON performs req and decodes a 2xx body into T.
func DoJSON[T any](ctx context.Context, hc *http.Client, r Request) (*T, error) {
	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, r.URL, body)
	if err != nil {
		return nil, err
	}
	for k, vals := range r.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, RedactURLError(err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		if r.ErrorMessage != nil {
			he.Message = strings.TrimSpace(r.ErrorMessage(raw))
		}
		return nil, he
	}

	var out T
	if len(bytes.TrimSpace(raw)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
