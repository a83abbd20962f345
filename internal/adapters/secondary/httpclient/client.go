// Package httpclient builds the resty clients shared by the upstream provider adapters.
// Each client carries a base URL, a bounded timeout, no retries, and a response hook
// that logs every upstream exchange with credentials redacted.
package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/core/domain"
)

const userAgent = "WeatherReport/1.0"

// secretParams are query parameters whose values never reach the logs.
var secretParams = []string{"apikey", "key", "token"}

// Config describes one upstream provider.
type Config struct {
	// Name identifies the provider in logs and errors
	Name string

	// BaseURL is the scheme and host every request path is resolved against
	BaseURL string

	// Timeout bounds a single upstream call
	Timeout time.Duration
}

// New creates a resty client for one upstream provider.
//
// Parameters:
//   - cfg: Provider name, base URL and timeout
//   - logger: Zap logger for request/response diagnostics
//
// Returns:
//   - *resty.Client: Configured client
func New(cfg Config, logger *zap.Logger) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("upstream response",
			zap.String("provider", cfg.Name),
			zap.String("method", resp.Request.Method),
			zap.String("url", RedactedURL(resp)),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()),
			zap.Int("body_size", len(resp.Body())))

		return nil
	})

	return client
}

// RedactedURL returns the final request URL of resp with secret query values masked.
func RedactedURL(resp *resty.Response) string {
	if resp == nil || resp.Request == nil {
		return ""
	}

	if resp.Request.RawRequest == nil || resp.Request.RawRequest.URL == nil {
		return resp.Request.URL
	}

	return Redact(resp.Request.RawRequest.URL)
}

// Redact masks credential query parameters in u.
func Redact(u *url.URL) string {
	redacted := *u
	query := redacted.Query()

	for _, name := range secretParams {
		if query.Has(name) {
			query.Set(name, "REDACTED")
		}
	}

	redacted.RawQuery = query.Encode()

	return redacted.String()
}

// TransportError builds the UPSTREAM_TRANSPORT error for a failed exchange: either
// err is set (no usable response) or resp carries a non-success status.
//
// Parameters:
//   - provider: Provider name for the message
//   - resp: Upstream response, may be nil when err is set
//   - err: Network or client error, may be nil
//
// Returns:
//   - *domain.WeatherError: Error carrying upstream status and body
func TransportError(provider string, resp *resty.Response, err error) *domain.WeatherError {
	if err != nil {
		return &domain.WeatherError{
			Code:    domain.CodeUpstreamTransport,
			Message: fmt.Sprintf("Error contacting %s", provider),
			Cause:   err,
		}
	}

	return &domain.WeatherError{
		Code:    domain.CodeUpstreamTransport,
		Message: fmt.Sprintf("%s returned status %d", provider, resp.StatusCode()),
		Status:  resp.StatusCode(),
		Body:    resp.String(),
	}
}
