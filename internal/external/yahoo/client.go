package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/wonny/fairvalue/internal/provider"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/httputil"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Client fetches market data from the public Yahoo Finance endpoints.
// All Yahoo calls go through this client.
//
// Two layers of throttling apply: the shared Redis sliding window configured
// on the HTTP client (covers every instance of the service) and a local token
// bucket (covers this process when Redis is disabled).
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	limiter    *rate.Limiter

	quoteBaseURL  string
	chartBaseURL  string
	searchBaseURL string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient:    httpClient,
		logger:        log.WithField("module", "yahoo"),
		limiter:       rate.NewLimiter(rate.Limit(cfg.Yahoo.RequestsPerSec), 1),
		quoteBaseURL:  cfg.Yahoo.QuoteBaseURL,
		chartBaseURL:  cfg.Yahoo.ChartBaseURL,
		searchBaseURL: cfg.Yahoo.SearchBaseURL,
	}
}

// fetchJSON performs a rate-limited GET and returns the response body.
// Upstream refusals become provider.ErrUnavailable so callers can degrade
// per ticker instead of crashing the batch.
func (c *Client) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("local rate limit wait: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: symbol not found", provider.ErrUnavailable)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: rate limited upstream", provider.ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status code %d", provider.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}
