package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source tags how a conversion factor was obtained.
type Source string

const (
	// SourceHome means the amount was already in the home currency.
	SourceHome Source = "home"
	// SourceObservation means a dated observation near the receipt date.
	SourceObservation Source = "observation"
	// SourceLatest means the most recent rate on record, date ignored.
	SourceLatest Source = "latest"
	// SourceDefault means the lookup degraded to a factor of 1.0.
	SourceDefault Source = "default"
)

// Resolution is the outcome of a rate lookup. There is no error variant:
// degraded lookups are tagged SourceDefault instead of failing.
type Resolution struct {
	Factor float64
	Source Source
	Date   *time.Time
}

// RateResolver resolves a currency code and optional transaction date to a
// multiplicative factor into the home currency.
type RateResolver interface {
	Resolve(ctx context.Context, currency string, onDate *time.Time) Resolution
}

// Config holds rate-service settings.
type Config struct {
	BaseURL      string
	HomeCurrency string
	MaxBackDays  int
	Timeout      time.Duration
}

// Client queries the Bank of Canada valet API for historical FX observations.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// windows are the look-back widths tried in order, days before the receipt
// date. The final width comes from Config.MaxBackDays.
var windows = []int{0, 7, 30, 90, 180}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.bankofcanada.ca/valet"
	}
	if cfg.HomeCurrency == "" {
		cfg.HomeCurrency = "CAD"
	}
	if cfg.MaxBackDays <= 0 {
		cfg.MaxBackDays = 365
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Resolve never fails: every code path terminates with a usable positive
// factor. Unsupported currencies, unreachable service, and malformed bodies
// all degrade to 1.0.
func (c *Client) Resolve(ctx context.Context, currency string, onDate *time.Time) Resolution {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" || code == c.cfg.HomeCurrency {
		return Resolution{Factor: 1.0, Source: SourceHome}
	}

	series := "FX" + code + c.cfg.HomeCurrency

	if onDate != nil {
		for _, back := range append(append([]int{}, windows...), c.cfg.MaxBackDays) {
			start := onDate.AddDate(0, 0, -back)
			params := url.Values{}
			params.Set("start_date", start.Format("2006-01-02"))
			params.Set("end_date", onDate.Format("2006-01-02"))

			obs := c.fetch(ctx, series, params)
			if factor, date, ok := lastObservation(obs, series); ok {
				c.logger.Info("fx.window.hit",
					"series", series,
					"back_days", back,
					"factor", factor,
					"observed", date.Format("2006-01-02"),
				)
				d := date
				return Resolution{Factor: factor, Source: SourceObservation, Date: &d}
			}
		}
	}

	params := url.Values{}
	params.Set("recent", "1")
	obs := c.fetch(ctx, series, params)
	if factor, date, ok := lastObservation(obs, series); ok {
		c.logger.Info("fx.recent.hit", "series", series, "factor", factor)
		d := date
		return Resolution{Factor: factor, Source: SourceLatest, Date: &d}
	}

	c.logger.Warn("fx.fallback.default", "series", series)
	return Resolution{Factor: 1.0, Source: SourceDefault}
}

// fetch returns the observations array, or nil on any transport, status, or
// decode problem. A failed window is just an empty window.
func (c *Client) fetch(ctx context.Context, series string, params url.Values) []map[string]json.RawMessage {
	u := fmt.Sprintf("%s/observations/%s/json?%s", strings.TrimRight(c.cfg.BaseURL, "/"), series, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("fx.fetch.error", "series", series, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("fx.fetch.status", "series", series, "status", resp.StatusCode)
		return nil
	}

	var payload struct {
		Observations []map[string]json.RawMessage `json:"observations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("fx.fetch.decode_error", "series", series, "error", err)
		return nil
	}
	return payload.Observations
}

// lastObservation walks the observations from newest to oldest and returns
// the first one with a usable positive value for the series.
func lastObservation(obs []map[string]json.RawMessage, series string) (float64, time.Time, bool) {
	for i := len(obs) - 1; i >= 0; i-- {
		raw, ok := obs[i][series]
		if !ok {
			continue
		}
		var cell struct {
			V string `json:"v"`
		}
		if err := json.Unmarshal(raw, &cell); err != nil {
			continue
		}
		factor, err := strconv.ParseFloat(cell.V, 64)
		if err != nil || factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
			continue
		}

		var date time.Time
		if rawDate, ok := obs[i]["d"]; ok {
			var ds string
			if err := json.Unmarshal(rawDate, &ds); err == nil {
				if t, err := time.ParseInLocation("2006-01-02", ds, time.UTC); err == nil {
					date = t
				}
			}
		}
		return factor, date, true
	}
	return 0, time.Time{}, false
}
