// Package ipinfo implements the IP locator against the ipinfo.io API.
package ipinfo

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/adapters/secondary/httpclient"
	"github.com/sean-rowe/weather-report/internal/core/domain"
)

const providerName = "ipinfo"

// Client resolves coordinates from the ipinfo "loc" field.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates an ipinfo client.
//
// Parameters:
//   - baseURL: ipinfo base URL (typically https://ipinfo.io)
//   - timeout: Upper bound for a single lookup
//   - logger: Zap logger
//
// Returns:
//   - *Client: Configured client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http: httpclient.New(httpclient.Config{
			Name:    providerName,
			BaseURL: baseURL,
			Timeout: timeout,
		}, logger),
		logger: logger,
	}
}

// locationResponse is the subset of the ipinfo body the locator reads.
type locationResponse struct {
	IP     string `json:"ip"`
	City   string `json:"city"`
	Region string `json:"region"`
	Loc    string `json:"loc"`
}

// Locate looks up clientIP, or the caller of the API when clientIP is empty.
//
// Parameters:
//   - ctx: Context for cancellation
//   - clientIP: Public address to locate, or ""
//   - token: ipinfo access token
//
// Returns:
//   - domain.Coordinates: Parsed "lat,lon"
//   - error: UPSTREAM_TRANSPORT for network or status failures, LOCATION_UNAVAILABLE
//     for malformed bodies or a missing loc field
func (c *Client) Locate(ctx context.Context, clientIP, token string) (domain.Coordinates, error) {
	path := "/json"

	if clientIP != "" {
		path = "/" + url.PathEscape(clientIP) + "/json"
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", token).
		Get(path)

	if err != nil || !resp.IsSuccess() {
		return domain.Coordinates{}, httpclient.TransportError(providerName, resp, err)
	}

	var body locationResponse

	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.Coordinates{}, &domain.WeatherError{
			Code:    domain.CodeLocationUnavailable,
			Message: "Could not determine location.",
			Status:  resp.StatusCode(),
			Body:    resp.String(),
			Cause:   err,
		}
	}

	if body.Loc == "" {
		return domain.Coordinates{}, &domain.WeatherError{
			Code:    domain.CodeLocationUnavailable,
			Message: "Could not determine location.",
			Status:  resp.StatusCode(),
			Body:    resp.String(),
		}
	}

	coords, err := domain.ParseLatLon(body.Loc)

	if err != nil {
		return domain.Coordinates{}, domain.NewError(domain.CodeLocationUnavailable, "Could not determine location.", err)
	}

	c.logger.Debug("location resolved",
		zap.String("ip", body.IP),
		zap.String("city", body.City),
		zap.String("region", body.Region))

	return coords, nil
}
