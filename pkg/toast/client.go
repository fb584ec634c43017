// Package toast is a rate-limited, retrying client for the Toast REST API.
package toast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tablesight/tablesight-backend/pkg/config"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

const (
	restaurantHeader            = "Toast-Restaurant-External-ID"
	ordersBulkPath              = "/orders/v2/ordersBulk"
	salesCategoriesPath         = "/config/v2/salesCategories"
	revenueCentersPath          = "/config/v2/revenueCenters"
	restaurantServicesPath      = "/config/v2/restaurantServices"
	businessDateLayout          = "20060102"
	responseBodyReadLimit int64 = 1024
	jitterPercent               = 20
)

// retryableStatus lists the upstream statuses worth another attempt.
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// StatusError is a non-200 upstream reply.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("toast status %d: %s", e.Status, e.Body)
}

// Client talks to one Toast API host. All requests share the rate limiter.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	token         string
	pageSize      int
	maxConcurrent int
	maxRetries    uint64
	baseBackoff   time.Duration
	maxBackoff    time.Duration
	limiter       *rate.Limiter
	onRetry       func(status int)
}

// Option configures optional client behavior.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter replaces the requests-per-minute limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithRetryObserver is called with the status of every retried response.
func WithRetryObserver(fn func(status int)) Option {
	return func(c *Client) {
		c.onRetry = fn
	}
}

func NewClient(cfg config.ToastConfig, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "toast access token is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "toast base url is required")
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	client := &Client{
		httpClient:    &http.Client{Timeout: orDefault(cfg.RequestTimeout, 30*time.Second)},
		baseURL:       base,
		token:         token,
		pageSize:      cfg.PageSize,
		maxConcurrent: cfg.MaxConcurrent,
		maxRetries:    cfg.MaxRetries,
		baseBackoff:   orDefault(cfg.BaseBackoff, 500*time.Millisecond),
		maxBackoff:    orDefault(cfg.MaxBackoff, 30*time.Second),
		limiter:       rate.NewLimiter(rate.Limit(float64(rpm)/60), 1),
	}
	if client.pageSize <= 0 {
		client.pageSize = 100
	}
	if client.maxConcurrent <= 0 {
		client.maxConcurrent = 1
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// OrdersForDates fetches every order for each business date, at most
// maxConcurrent dates in flight. Results keep the order of dates.
func (c *Client) OrdersForDates(ctx context.Context, restaurantID string, dates []time.Time) ([]Order, error) {
	perDate := make([][]Order, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, date := range dates {
		g.Go(func() error {
			orders, err := c.OrdersForDate(gctx, restaurantID, date)
			if err != nil {
				return err
			}
			perDate[i] = orders
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Order
	for _, orders := range perDate {
		out = append(out, orders...)
	}
	return out, nil
}

// OrdersForDate pages ordersBulk until a short page.
func (c *Client) OrdersForDate(ctx context.Context, restaurantID string, date time.Time) ([]Order, error) {
	var out []Order
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("businessDate", date.Format(businessDateLayout))
		q.Set("pageSize", strconv.Itoa(c.pageSize))
		q.Set("page", strconv.Itoa(page))

		var batch []Order
		if err := c.getJSON(ctx, ordersBulkPath, q, restaurantID, &batch); err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < c.pageSize {
			return out, nil
		}
	}
}

func (c *Client) SalesCategories(ctx context.Context, restaurantID string) ([]ConfigEntity, error) {
	return c.configEntities(ctx, salesCategoriesPath, restaurantID)
}

func (c *Client) RevenueCenters(ctx context.Context, restaurantID string) ([]ConfigEntity, error) {
	return c.configEntities(ctx, revenueCentersPath, restaurantID)
}

// RestaurantServices are the service periods (Lunch, Dinner, ...).
func (c *Client) RestaurantServices(ctx context.Context, restaurantID string) ([]ConfigEntity, error) {
	return c.configEntities(ctx, restaurantServicesPath, restaurantID)
}

func (c *Client) configEntities(ctx context.Context, path, restaurantID string) ([]ConfigEntity, error) {
	var out []ConfigEntity
	if err := c.getJSON(ctx, path, nil, restaurantID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.baseBackoff)
	b = retry.WithJitterPercent(jitterPercent, b)
	b = retry.WithCappedDuration(c.maxBackoff, b)
	return retry.WithMaxRetries(c.maxRetries, b)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, restaurantID string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set(restaurantHeader, restaurantID)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
			statusErr := &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
			if retryableStatus[resp.StatusCode] {
				if c.onRetry != nil {
					c.onRetry(resp.StatusCode)
				}
				return retry.RetryableError(statusErr)
			}
			return statusErr
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toast request "+path)
	}
	return nil
}
