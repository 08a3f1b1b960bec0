// Package gateway builds, sends and classifies every HTTP request the SDK
// issues. It is the single place where transport failures and non-2xx
// responses become typed, classified errors; layers above read the
// classification off the error instead of recomputing it.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/royalburger/client-go/internal/errclass"
	"github.com/royalburger/client-go/internal/retry"
	"github.com/royalburger/client-go/internal/store"
)

// Defaults for the per-request budget.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// Options tunes a single request.
type Options struct {
	// Method defaults to GET.
	Method string

	// Body is JSON-encoded unless it is a []byte, string or io.Reader, which
	// pass through unchanged (multipart uploads set their own Content-Type
	// via Headers).
	Body any

	// Headers are merged over the defaults.
	Headers map[string]string

	// SkipAuth suppresses the Authorization header even when a token is
	// stored.
	SkipAuth bool

	// SkipRetry issues exactly one attempt.
	SkipRetry bool

	// Timeout bounds each attempt; zero means DefaultTimeout.
	Timeout time.Duration

	// MaxRetries overrides the retry budget; negative means "no retries",
	// zero means the gateway default.
	MaxRetries int
}

// Gateway resolves paths against a base origin, attaches credentials and
// delegates transport to the retry engine.
type Gateway struct {
	baseURL    string
	http       *http.Client
	creds      *store.Credentials
	log        zerolog.Logger
	maxRetries int
}

// New constructs a Gateway. The http.Client is shared with the rest of the
// SDK so transport wrappers (debug logging) apply here too.
func New(baseURL string, httpClient *http.Client, creds *store.Credentials, log zerolog.Logger) *Gateway {
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       httpClient,
		creds:      creds,
		log:        log.With().Str("component", "gateway").Logger(),
		maxRetries: DefaultMaxRetries,
	}
}

// SetMaxRetries overrides the default retry budget for requests that do not
// set their own. Call before issuing requests.
func (g *Gateway) SetMaxRetries(n int) {
	if n >= 0 {
		g.maxRetries = n
	}
}

// Request performs one logical request and returns the raw response body on
// any 2xx status. Failures come back as *errclass.Error.
func (g *Gateway) Request(ctx context.Context, path string, opts Options) ([]byte, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	op := method + " " + path

	body, rawBody, err := encodeBody(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", op, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	budget := g.maxRetries
	switch {
	case opts.MaxRetries > 0:
		budget = opts.MaxRetries
	case opts.MaxRetries < 0:
		budget = 0
	}

	requestID := uuid.NewString()
	attempt := func(actx context.Context) ([]byte, error) {
		return g.doAttempt(actx, method, path, op, body, rawBody, requestID, opts)
	}

	start := time.Now()
	var out []byte
	if opts.SkipRetry {
		out, err = retry.Do(ctx, retry.Options{MaxRetries: 0, Timeout: timeout}, attempt)
	} else {
		out, err = retry.Do(ctx, retry.Options{
			MaxRetries: budget,
			Timeout:    timeout,
			OnRetry: func(n int, delay time.Duration, cause error) {
				retriesTotal.WithLabelValues(method).Inc()
				g.log.Debug().
					Str("request_id", requestID).
					Str("op", op).
					Int("attempt", n).
					Dur("delay", delay).
					Err(cause).
					Msg("retrying request")
			},
		}, attempt)
	}
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	return out, err
}

// DecodeJSON runs Request and decodes the body into out. A nil out discards
// the body.
func (g *Gateway) DecodeJSON(ctx context.Context, path string, opts Options, out any) error {
	raw, err := g.Request(ctx, path, opts)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (g *Gateway) doAttempt(ctx context.Context, method, path, op string, body []byte, rawBody bool, requestID string, opts Options) ([]byte, error) {
	url := g.resolve(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil && !rawBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if !opts.SkipAuth {
		if token := g.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.http.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &errclass.Error{
			Classification: errclass.ClassifyTransport(err),
			Op:             op,
			Err:            err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &errclass.Error{
			Classification: errclass.ClassifyTransport(readErr),
			Op:             op,
			Err:            readErr,
		}
	}

	requestsTotal.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return payload, nil
	}
	return nil, g.statusError(resp, op, path, payload)
}

// statusError converts a non-2xx response into a classified error. A 401
// from anything but the auth endpoints is authoritative and purges the
// stored credential; on the auth endpoints the 401 is the login failure
// itself and must not wipe an unrelated existing session.
func (g *Gateway) statusError(resp *http.Response, op, path string, body []byte) error {
	var payload errclass.Payload
	if isJSONResponse(resp) {
		_ = json.Unmarshal(body, &payload)
	} else if len(body) > 0 {
		payload.Message = string(body)
	}

	cls := errclass.ClassifyStatus(resp.StatusCode, payload)
	if isAuthEndpoint(path) && (resp.StatusCode == 401 || resp.StatusCode == 403) {
		// Login failures carry the server's specific reason
		// (wrong password, inactive account).
		if m := payload.ServerMessage(); m != "" {
			cls.UserMessage = m
		}
	}

	if resp.StatusCode == 401 && !isAuthEndpoint(path) {
		g.log.Info().Str("op", op).Msg("authoritative 401, clearing credentials")
		g.creds.LogoutLocal()
	}

	return &errclass.Error{
		Classification: cls,
		Status:         resp.StatusCode,
		Payload:        payload,
		Op:             op,
	}
}

func (g *Gateway) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return g.baseURL + path
}

// encodeBody serializes the request body once, outside the retry loop, so
// every attempt sends identical bytes. rawBody reports that the caller
// provided pre-encoded content and the gateway must not force a JSON
// Content-Type.
func encodeBody(body any) (data []byte, rawBody bool, err error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return b, true, nil
	case string:
		return []byte(b), true, nil
	case io.Reader:
		data, err = io.ReadAll(b)
		return data, true, err
	default:
		data, err = json.Marshal(body)
		return data, false, err
	}
}

func isJSONResponse(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

// isAuthEndpoint matches the endpoints whose 401/403 must be interpreted as
// the operation's own outcome rather than a session expiry.
func isAuthEndpoint(path string) bool {
	return strings.Contains(path, "/api/auth/login") || strings.Contains(path, "/api/auth/verify-2fa")
}

func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
