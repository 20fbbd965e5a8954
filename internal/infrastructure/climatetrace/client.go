package climatetrace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verdeai/backend/internal/domain"
	"github.com/verdeai/backend/internal/platform/logger"
)

// DefaultBaseURL is the public Climate TRACE API.
const DefaultBaseURL = "https://api.climatetrace.org"

const (
	maxAttempts      = 3
	maxResponseBytes = 1 << 20
	maxErrorBodyLog  = 512
)

// Client handles communication with the Climate TRACE emissions API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.SugaredLogger
	debug       bool
}

// NewClient creates a new Climate TRACE API client
func NewClient(baseURL string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// The API is public and unauthenticated; stay well below anything abusive.
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: limiter,
		logger:      logger.OrNop(log).Named("climatetrace").Sugar(),
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		c.logger.Infof(format, args...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes of body.
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "VerdeAI/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmissionsUnavailable, err)
	}

	return resp, nil
}

// CountryTotals fetches the total emissions of one country for one year.
// It returns ErrNoEmissionsData when the API has nothing for that year and
// ErrEmissionsUnavailable for every other failure.
func (c *Client) CountryTotals(ctx context.Context, country string, year int) (*domain.EmissionsTotals, error) {
	endpoint := fmt.Sprintf("%s/v1/emissions/totals", c.baseURL)
	params := url.Values{}
	params.Add("countries", country)
	params.Add("year", strconv.Itoa(year))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	c.debugLog("CountryTotals %s %d: %s", country, year, reqURL)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrEmissionsUnavailable, err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if errors.Is(err, domain.ErrEmissionsUnavailable) {
				c.logger.Warnf("request error (attempt %d): %v", attempt, err)
				lastErr = err
				if !c.sleep(ctx, attempt) {
					return nil, lastErr
				}
				continue
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrEmissionsUnavailable, err)
		}

		body, readErr := readLimitedBody(resp.Body, maxResponseBytes)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrNoEmissionsData
		}

		if resp.StatusCode != http.StatusOK {
			snippet := body
			if len(snippet) > maxErrorBodyLog {
				snippet = snippet[:maxErrorBodyLog]
			}
			c.logger.Warnf("API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(snippet))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrEmissionsUnavailable, resp.StatusCode)

			// client errors other than throttling will not improve on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
			if !c.sleep(ctx, attempt) {
				return nil, lastErr
			}
			continue
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: read body: %v", domain.ErrEmissionsUnavailable, readErr)
		}

		var entries []CountryEmissions
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrEmissionsUnavailable, err)
		}

		totals, err := MapToEmissionsTotals(entries, country, year)
		if err != nil {
			c.debugLog("no usable emissions for %s %d: %v", country, year, err)
			return nil, err
		}

		c.debugLog("emissions for %s %d: %.0f t", country, year, totals.EmissionsTonnes)
		return totals, nil
	}

	c.logger.Warnf("all retries failed for %s %d", country, year)
	return nil, lastErr
}

// sleep waits out the backoff for attempt unless ctx ends first or no
// attempts remain.
func (c *Client) sleep(ctx context.Context, attempt int) bool {
	if attempt >= maxAttempts {
		return true
	}
	timer := time.NewTimer(exponentialBackoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
