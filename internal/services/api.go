package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "http://localhost:4000"

// Endpoint describes one remote operation.
//
// Description is the message surfaced when the call fails.
type Endpoint struct {
	Name        string
	Method      string
	Path        string
	Query       url.Values
	Description string
}

func endpoint(name, method, path, description string) Endpoint {
	return Endpoint{Name: name, Method: method, Path: path, Description: description}
}

// WithQuery returns a copy of e with query parameters attached.
func (e Endpoint) WithQuery(q url.Values) Endpoint {
	e.Query = q
	return e
}

// Gateway attaches the current bearer token to every outbound call and normalizes failures into [RequestError].
//
// The token is process-wide: a [Gateway.SetToken] takes effect for every request issued after it returns.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	mu    sync.RWMutex
	token string
}

// GatewayOpts configures [NewGateway].
type GatewayOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables throttling
	Burst      int
	Logger     *log.Logger
}

// NewGateway creates a gateway. The supplied client's transport is wrapped, not replaced.
func NewGateway(opts GatewayOpts) *Gateway {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}

	g := &Gateway{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  shared.WithLogger(opts.Logger, "component", "gateway"),
	}

	timeout := base.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	g.httpClient = &http.Client{
		Transport:     &bearerTransport{gateway: g, base: base.Transport},
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       timeout,
	}

	if opts.RateLimit > 0 {
		burst := max(opts.Burst, 1)
		g.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return g
}

// SetToken replaces the bearer token used by all subsequent calls. An empty token means signed out.
func (g *Gateway) SetToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

// Token returns the current bearer token.
func (g *Gateway) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// BaseURL returns the API root the gateway talks to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// bearerTransport reads the gateway token on every round trip and delegates header injection to [oauth2.Transport].
type bearerTransport struct {
	gateway *Gateway
	base    http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	token := t.gateway.Token()
	if token == "" {
		return base.RoundTrip(req)
	}

	transport := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   base,
	}
	return transport.RoundTrip(req)
}

// Call performs ep with an optional JSON body and decodes a 2xx JSON response into T.
func Call[T any](ctx context.Context, g *Gateway, ep Endpoint, body any) Result[T] {
	var out T
	if err := g.do(ctx, ep, body, &out); err != nil {
		return Fail[T](err)
	}
	return Ok(out)
}

func (g *Gateway) do(ctx context.Context, ep Endpoint, body, out any) *RequestError {
	requestID := shared.GenerateID()
	fail := func(kind ErrorKind, status int, cause error) *RequestError {
		msg := ep.Description
		if kind == KindCanceled {
			msg = "Request canceled"
		}
		rerr := &RequestError{
			Kind:    kind,
			Message: msg,
			Context: ErrorContext{
				Endpoint:   ep.Name,
				Method:     ep.Method,
				Path:       ep.Path,
				StatusCode: status,
				RequestID:  requestID,
			},
			cause: cause,
		}
		if cause != nil {
			rerr.Context.Cause = cause.Error()
		}
		g.logger.Debug("api request failed", "endpoint", ep.Name, "kind", kind, "status", status, "request_id", requestID, "cause", rerr.Context.Cause)
		return rerr
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fail(KindCanceled, 0, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(KindNetwork, 0, fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	fullURL := g.baseURL + ep.Path
	if len(ep.Query) > 0 {
		fullURL += "?" + ep.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, fullURL, reader)
	if err != nil {
		return fail(KindNetwork, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return fail(KindCanceled, 0, err)
		}
		return fail(KindNetwork, 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(KindNetwork, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	g.logger.Debug("api request", "method", ep.Method, "path", ep.Path, "status", resp.StatusCode, "duration", time.Since(start), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(KindStatus, resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(KindDecode, resp.StatusCode, err)
	}
	return nil
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Raw performs an unprocessed request against the API root, attaching the bearer token.
//
// Used by the debugging commands; unlike [Call] it never interprets the status code.
func (g *Gateway) Raw(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var reader io.Reader
	if len(data) > 0 {
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
