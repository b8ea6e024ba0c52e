package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/matzehuels/erdlayout/pkg/buildinfo"
	"github.com/matzehuels/erdlayout/pkg/cache"
	"github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/httputil"
	"github.com/matzehuels/erdlayout/pkg/observability"
)

const (
	// DefaultTimeout bounds a single request to the service.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of attempts made for transient failures.
	DefaultRetries = 3

	// DefaultRetryDelay is the wait before the first retry; it doubles
	// after each failed attempt.
	DefaultRetryDelay = time.Second

	cacheKind = "schema"
)

// Config configures a [Client].
type Config struct {
	// BaseURL of the service, e.g. "https://schema.example.com".
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token   string
	Timeout time.Duration

	// Cache stores successful responses. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration

	Retries    int
	RetryDelay time.Duration

	Logger *log.Logger
}

// Client talks to the schema service.
//
// A Client is safe for concurrent use.
type Client struct {
	http       *resty.Client
	host       string
	cache      cache.Cache
	keyer      cache.Keyer
	ttl        time.Duration
	retries    int
	retryDelay time.Duration
	logger     *log.Logger
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if err := errors.ValidateURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid service url")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", buildinfo.UserAgent()).
		SetHeader("Accept", "application/json").
		SetDisableWarn(true)
	if cfg.Token != "" {
		hc.SetAuthToken(cfg.Token)
	}

	return &Client{
		http:       hc,
		host:       u.Host,
		cache:      cfg.Cache,
		keyer:      cache.NewScopedKeyer(cache.NewDefaultKeyer(), u.Host+"|"),
		ttl:        cfg.CacheTTL,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}, nil
}

// HTTPClient returns the underlying *http.Client, for transport
// customization and tests.
func (c *Client) HTTPClient() *http.Client {
	return c.http.GetClient()
}

// GenerateSQL derives tables and DDL for the diagram in req. With refresh
// set, a cached answer is ignored and replaced.
func (c *Client) GenerateSQL(ctx context.Context, req SQLRequest, refresh bool) (*SQLResult, error) {
	if err := errors.ValidateProjectID(req.ProjectID); err != nil {
		return nil, err
	}
	dialect, err := errors.ValidateDialect(req.Dialect)
	if err != nil {
		return nil, err
	}
	req.Dialect = dialect

	var res SQLResult
	if err := c.post(ctx, projectPath(req.ProjectID, "generate-dsd"), req.wire(), refresh, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, errors.New(errors.ErrCodeService, "sql generation failed: %s", strings.Join(res.Errors, "; "))
	}
	return &res, nil
}

func (r *SQLResult) succeeded() bool { return r.Success }

// Normalize decomposes the tables derived from req.Diagram into the
// requested normal form.
func (c *Client) Normalize(ctx context.Context, req NormalizeRequest, refresh bool) (*NormalizeResult, error) {
	if err := errors.ValidateProjectID(req.ProjectID); err != nil {
		return nil, err
	}
	form, err := errors.ValidateNormalForm(req.NormalForm)
	if err != nil {
		return nil, err
	}
	req.NormalForm = form
	if len(req.Dependencies) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDependency, "at least one functional dependency is required")
	}

	var res NormalizeResult
	if err := c.post(ctx, projectPath(req.ProjectID, "normalize"), req.wire(), refresh, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, errors.New(errors.ErrCodeService, "normalization failed")
	}
	return &res, nil
}

func (r *NormalizeResult) succeeded() bool { return r.Success }

func projectPath(id, op string) string {
	return fmt.Sprintf("/api/projects/%s/%s/", url.PathEscape(id), op)
}

// answer is a decoded service response that reports its own outcome.
type answer interface {
	succeeded() bool
}

// post sends body to path and decodes the answer into out, going through
// the cache unless refresh is set. Only answers that decode and report
// success are cached.
func (c *Client) post(ctx context.Context, path string, body any, refresh bool, out answer) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}
	key := c.keyer.ServiceKey(path, payload)

	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if json.Unmarshal(data, out) == nil {
				observability.Cache().OnCacheHit(ctx, cacheKind)
				c.logger.Debug("cache hit", "path", path)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, cacheKind)
	}

	var data []byte
	err = httputil.Retry(ctx, c.retries, c.retryDelay, func() error {
		var err error
		data, err = c.send(ctx, path, payload)
		return err
	})
	if err != nil {
		var re *httputil.RetryableError
		if errors.As(err, &re) {
			return re.Err
		}
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(errors.ErrCodeService, err, "decode response from %s", path)
	}
	if !out.succeeded() {
		return nil
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, cacheKind, len(data))
	}
	return nil
}

func (c *Client) send(ctx context.Context, path string, payload []byte) ([]byte, error) {
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodPost, c.host, path)
	requestID := uuid.NewString()
	c.logger.Debug("schema request", "path", path, "request_id", requestID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Request-ID", requestID).
		SetBody(payload).
		Post(path)
	if err != nil {
		hooks.OnError(ctx, http.MethodPost, c.host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "schema service unreachable"))
	}
	hooks.OnResponse(ctx, http.MethodPost, c.host, path, resp.StatusCode(), resp.Time())

	if err := checkStatus(resp); err != nil {
		c.logger.Debug("schema request failed", "path", path, "status", resp.StatusCode(), "request_id", requestID)
		return nil, err
	}
	return resp.Body(), nil
}

// checkStatus maps a non-2xx response to a coded error. Rate limiting and
// server errors come back retryable.
func checkStatus(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}
	msg := serviceMessage(resp.Body(), resp.Status())

	switch {
	case status == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header().Get("Retry-After"))
		rl := &errors.RateLimitedError{RetryAfter: retryAfter, Message: msg}
		return httputil.Retryable(errors.Wrap(errors.ErrCodeRateLimited, rl, "%s", rl.Error()))
	case httputil.StatusRetryable(status):
		return httputil.Retryable(errors.New(errors.ErrCodeService, "schema service error (%d): %s", status, msg))
	case status == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "unauthorized: %s", msg)
	case status == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "forbidden: %s", msg)
	case status == http.StatusNotFound:
		return errors.New(errors.ErrCodeProjectNotFound, "project not found: %s", msg)
	default:
		return errors.New(errors.ErrCodeService, "%s", msg)
	}
}

// serviceMessage extracts the most specific message from an error body,
// falling back to the HTTP status line.
func serviceMessage(body []byte, status string) string {
	var se serviceError
	if json.Unmarshal(body, &se) != nil {
		return status
	}
	var details []string
	if len(se.Errors) > 0 {
		var list []string
		if json.Unmarshal(se.Errors, &list) == nil {
			details = list
		} else {
			details = []string{string(se.Errors)}
		}
	}

	msg := se.Error
	if msg == "" {
		msg = se.Message
	}
	switch {
	case msg != "" && len(details) > 0:
		return msg + ": " + strings.Join(details, "; ")
	case msg != "":
		return msg
	case len(details) > 0:
		return strings.Join(details, "; ")
	}
	return status
}
