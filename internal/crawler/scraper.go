package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"devsurvey/internal/config"
	"devsurvey/internal/logger"
	"devsurvey/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// PageFetcher returns the rendered HTML of a page.
type PageFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages with plain HTTP GETs and config-driven retry.
// It sees only server-rendered markup.
type HTTPFetcher struct {
	client *resty.Client
	logger *logger.Logger
}

// NewHTTPFetcher creates a fetcher with the given retry policy.
func NewHTTPFetcher(retryPolicy *config.RetryPolicy, log *logger.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: newRestyClient(retryPolicy),
		logger: log.Component("http-fetcher"),
	}
}

func newRestyClient(retryPolicy *config.RetryPolicy) *resty.Client {
	client := resty.New().
		SetTimeout(retryPolicy.GetTimeout()).
		SetRetryCount(retryPolicy.MaxAttempts - 1).
		SetRetryWaitTime(retryPolicy.GetRetryDelay(2)).
		SetRetryMaxWaitTime(retryPolicy.GetRetryDelay(retryPolicy.MaxAttempts)).
		SetRetryAfter(retryAfter(retryPolicy)).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}

			return r != nil && isRetryableStatus(r.StatusCode())
		})

	for key, values := range utils.NewHTTPHelper().BuildHeaders(nil) {
		for _, v := range values {
			client.SetHeader(key, v)
		}
	}

	return client
}

// retryAfter waits GetRetryDelay for the attempt about to run, so the
// configured multiplier drives the backoff instead of resty's jitter.
func retryAfter(retryPolicy *config.RetryPolicy) resty.RetryAfterFunc {
	return func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		if resp == nil || resp.Request == nil {
			return 0, nil
		}

		return retryPolicy.GetRetryDelay(resp.Request.Attempt + 1), nil
	}
}

// FetchHTML implements PageFetcher.
func (f *HTTPFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("request failed after %d attempts: %w", f.client.RetryCount+1, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode())
	}

	f.logger.Debug("Fetched page", "url", url, "bytes", len(resp.Body()), "attempt", resp.Request.Attempt,
		"duration", resp.Time())

	return resp.String(), nil
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}
