package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"glycofy/internal/session"
)

// Observer is called once per completed request. status is 0 when no
// response was received.
type Observer func(method, path string, status int, latency time.Duration)

// Response is a decoded 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	// JSON holds the parsed body for JSON content types. It is nil when the
	// body could not be parsed.
	JSON any
	// Text holds the body for non-JSON content types.
	Text string
	Body []byte
}

// IsJSON reports whether the server declared a JSON body.
func (r *Response) IsJSON() bool {
	return isJSON(r.Header.Get("Content-Type"))
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Client talks to the Glycofy backend.
type Client struct {
	baseURL    string
	loginPath  string
	httpClient *http.Client
	session    *session.Session
	navigator  Navigator
	observer   Observer
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. A cookie jar is added if
// it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLoginPath(p string) Option {
	return func(c *Client) { c.loginPath = p }
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL authenticated by sess.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		loginPath:  "/login",
		httpClient: &http.Client{},
		session:    sess,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session, _ = session.Load(context.Background(), nil)
	}
	if c.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}
	if c.navigator == nil {
		c.navigator = NewLocation("/", nil)
	}
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// Do sends one request. body, when non-nil, is sent as JSON.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, path, 0, start)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.observe(method, path, resp.StatusCode, start)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, c.unauthorized(ctx, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailedError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    failureMessage(resp.StatusCode, raw),
		}
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}
	if isJSON(resp.Header.Get("Content-Type")) {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			c.logger.Debug("unparseable JSON body", zap.String("path", path), zap.Error(err))
		} else {
			out.JSON = v
		}
	} else {
		out.Text = string(raw)
	}
	return out, nil
}

func (c *Client) unauthorized(ctx context.Context, method, path string) error {
	if err := c.session.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear session", zap.Error(err))
	}
	target := LoginURL(c.loginPath, c.navigator.CurrentPath())
	c.logger.Info("session rejected, redirecting", zap.String("path", path), zap.String("login", target))
	c.navigator.Navigate(target)
	return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.observer != nil {
		c.observer(method, path, status, time.Since(start))
	}
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
