// Package feed fetches Nord Pool day-ahead spot prices from the Elering API
// and converts them into per-day price series.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tkasuk/nordwatt/internal/domain/price"
	"github.com/tkasuk/nordwatt/pkg/logger"
	"github.com/tkasuk/nordwatt/pkg/metrics"
)

const defaultBaseURL = "https://dashboard.elering.ee/api/nps/price"

// EUR/MWh to minor-currency ct/kWh.
var priceDivisor = decimal.NewFromInt(10)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithArea sets the Nord Pool price area code ("lt", "lv", "ee", "fi").
func WithArea(area string) Option {
	return func(c *Client) {
		if area != "" {
			c.area = area
		}
	}
}

// WithPrecision sets the decimal precision applied once during conversion.
func WithPrecision(digits int) Option {
	return func(c *Client) {
		if digits >= 0 {
			c.precision = digits
		}
	}
}

// WithLocation sets the price-area timezone used to label days and hours.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock overrides the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client fetches spot prices for one price area.
type Client struct {
	baseURL   string
	client    *http.Client
	log       logger.Logger
	area      string
	precision int
	loc       *time.Location
	now       func() time.Time
}

// NewClient creates a feed client with configuration options.
func NewClient(log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:       log,
		area:      "lt",
		precision: 1,
		loc:       time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// row is one hourly price as the API returns it: a unix timestamp and a
// EUR/MWh price.
type row struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// apiResponse wraps the per-area price lists.
type apiResponse struct {
	Success bool             `json:"success"`
	Data    map[string][]row `json:"data"`
}

// Fetch retrieves today's and tomorrow's series for the configured area.
// Tomorrow may come back empty before the exchange publishes the next day;
// that is not an error.
func (c *Client) Fetch(ctx context.Context) (price.Series, price.Series, error) {
	started := c.now()
	days, err := c.fetchDays(ctx)
	metrics.RecordPriceFetchLatency(float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.RecordPriceFetchError()
		return nil, nil, err
	}
	metrics.RecordPriceFetch()

	now := c.now()
	today := days[price.TodayKey(now, c.loc)]
	tomorrow := days[price.TomorrowKey(now, c.loc)]

	c.log.Info(ctx, "fetched spot prices",
		logger.String("area", c.area),
		logger.Int("todayPoints", len(today)),
		logger.Int("tomorrowPoints", len(tomorrow)),
	)
	return today, tomorrow, nil
}

// fetchDays queries the API over a window from four hours before today's UTC
// midnight through the end of tomorrow, wide enough to cover both local days
// in any European timezone.
func (c *Client) fetchDays(ctx context.Context) (map[string]price.Series, error) {
	nowUTC := c.now().UTC()
	dayStart := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)
	start := dayStart.Add(-4 * time.Hour)
	end := dayStart.AddDate(0, 0, 2).Add(-time.Second)

	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	reqURL := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetchFailed, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read price response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("%w: success=false", ErrBadPayload)
	}

	rows, ok := parsed.Data[c.area]
	if !ok {
		return nil, fmt.Errorf("%w: area %q missing", ErrBadPayload, c.area)
	}

	return c.convert(rows), nil
}

// convert turns API rows into per-day series keyed by local day. Conversion
// divides EUR/MWh by ten into ct/kWh and rounds exactly once, here.
func (c *Client) convert(rows []row) map[string]price.Series {
	days := make(map[string]price.Series)
	for _, r := range rows {
		t := time.Unix(r.Timestamp, 0).In(c.loc)
		day := price.DayKey(t)
		days[day] = append(days[day], price.Point{
			Day:   day,
			Hour:  t.Hour(),
			Price: convertPrice(r.Price, c.precision),
		})
	}
	return days
}

// convertPrice applies the /10 unit conversion with decimal arithmetic so the
// rounding is exact at the configured precision.
func convertPrice(eurPerMWh float64, precision int) float64 {
	return decimal.NewFromFloat(eurPerMWh).
		Div(priceDivisor).
		Round(int32(precision)).
		InexactFloat64()
}

// CheckSystemTimezone warns when the process timezone differs from the price
// area's; hour labels follow the area timezone either way.
func (c *Client) CheckSystemTimezone(ctx context.Context) {
	system := time.Now().Location().String()
	if system != c.loc.String() {
		c.log.Warn(ctx, "system timezone differs from price-area timezone",
			logger.String("system", system),
			logger.String("area", c.loc.String()),
		)
	}
}
