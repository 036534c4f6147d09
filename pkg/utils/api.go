package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kerbaras/novels/pkg/data"
	"golang.org/x/time/rate"
)

// HTTPError is a non-2xx answer from the platform API.
type HTTPError struct {
	Status  int
	Message string
	URL     string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

func (e *HTTPError) StatusCode() int { return e.Status }

// UserMessage is the message the server meant for the reader, if any.
func (e *HTTPError) UserMessage() string { return e.Message }

// Unwrap lets 404s match data.ErrNotFound.
func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return data.ErrNotFound
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type API struct {
	client  *resty.Client
	limiter *rate.Limiter
}

type APIOption func(*API)

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) APIOption {
	return func(a *API) {
		if perSecond <= 0 {
			a.limiter = nil
			return
		}
		a.limiter = rate.NewLimiter(rate.Limit(perSecond), 2)
	}
}

func WithTimeout(d time.Duration) APIOption {
	return func(a *API) { a.client.SetTimeout(d) }
}

// WithRetries sets how often 429s and transport failures are retried.
func WithRetries(count int, wait time.Duration) APIOption {
	return func(a *API) {
		a.client.SetRetryCount(count).SetRetryWaitTime(wait)
	}
}

func NewAPI(baseURL string, opts ...APIOption) *API {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(disableLogger{}).
		SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetRetryAfter(retryAfter).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests
		})

	a := &API{client: client}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func retryAfter(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	if resp == nil || resp.StatusCode() != http.StatusTooManyRequests {
		return 0, nil
	}
	if v := resp.Header().Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		if t, err := http.ParseTime(v); err == nil {
			return time.Until(t), nil
		}
	}
	return time.Second, nil
}

func (a *API) wait(ctx context.Context) error {
	if a.limiter == nil {
		return nil
	}
	return a.limiter.Wait(ctx)
}

// Get decodes the JSON body at path into v.
func (a *API) Get(ctx context.Context, path string, params url.Values, v any) error {
	if err := a.wait(ctx); err != nil {
		return err
	}

	req := a.client.R().SetContext(ctx).SetError(&errorBody{})
	if v != nil {
		req.SetResult(v)
	}
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return toHTTPError(resp, path)
	}
	return nil
}

// Download fetches raw bytes, e.g. chapter illustrations. Absolute URLs skip
// the base URL.
func (a *API) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := a.client.R().SetContext(ctx).SetHeader("Accept", "*/*").Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.IsError() {
		return nil, toHTTPError(resp, rawURL)
	}
	return resp.Body(), nil
}

func toHTTPError(resp *resty.Response, path string) error {
	herr := &HTTPError{Status: resp.StatusCode(), URL: path}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		herr.Message = body.Message
		if herr.Message == "" {
			herr.Message = body.Error
		}
	}
	return herr
}

// IsNotFound reports whether err is a 404 or a local miss.
func IsNotFound(err error) bool {
	return errors.Is(err, data.ErrNotFound)
}

type disableLogger struct{}

func (disableLogger) Errorf(string, ...interface{}) {}
func (disableLogger) Warnf(string, ...interface{})  {}
func (disableLogger) Debugf(string, ...interface{}) {}
