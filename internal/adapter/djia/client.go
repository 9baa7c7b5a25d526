// Package djia fetches and caches Dow Jones opening values from a
// geo.crox.net-style upstream: GET {base}/{year}/{month}/{day} returns either
// a bare decimal string or a payload beginning with "error".
package djia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/oliver/ghfeed/internal/domain"
	"github.com/oliver/ghfeed/internal/observability"
)

// errTransient marks fetch failures worth retrying after the standard retry
// window: transport faults, bad upstream statuses, and an open circuit.
var errTransient = errors.New("transient upstream failure")

// Client implements domain.OpeningSource against the upstream HTTP source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an upstream DJIA client with a bounded request timeout
// and a circuit breaker guarding the upstream.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "djia",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		circuit: cb,
		metrics: metrics,
		logger:  logger,
	}
}

// Opening fetches the opening value for date. Payloads beginning with "error"
// fail with domain.ErrDataUnavailable; transport and status failures are
// marked transient; anything that does not parse as a finite number is
// reported as malformed.
func (c *Client) Opening(ctx context.Context, date time.Time) (domain.Opening, error) {
	u := fmt.Sprintf("%s/%d/%d/%d", c.baseURL, date.Year(), int(date.Month()), date.Day())

	start := time.Now()
	result, err := c.circuit.Execute(func() (any, error) {
		return c.doRequest(ctx, u)
	})
	c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.UpstreamRequests.WithLabelValues("rejected").Inc()
			return domain.Opening{}, fmt.Errorf("djia circuit open: %w", errTransient)
		}
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return domain.Opening{}, err
	}

	payload := result.(string)
	if strings.HasPrefix(payload, "error") {
		c.metrics.UpstreamRequests.WithLabelValues("no_data").Inc()
		return domain.Opening{}, fmt.Errorf("no opening published for %s: %w", domain.ISODate(date), domain.ErrDataUnavailable)
	}

	value, parseErr := strconv.ParseFloat(payload, 64)
	if parseErr != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		c.metrics.UpstreamRequests.WithLabelValues("malformed").Inc()
		return domain.Opening{}, fmt.Errorf("malformed opening payload %q for %s", payload, domain.ISODate(date))
	}

	c.metrics.UpstreamRequests.WithLabelValues("success").Inc()
	return domain.Opening{Value: value, Raw: payload}, nil
}

func (c *Client) doRequest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("djia request: %v: %w", err, errTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("djia upstream status %d: %w", resp.StatusCode, errTransient)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read response: %v: %w", err, errTransient)
	}

	return strings.TrimSpace(string(body)), nil
}
