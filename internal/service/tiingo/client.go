package tiingo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/service/ratelimit"
	xhttp "StockCast/pkg/http"
)

// Client implements a SeriesSource backed by the Tiingo end-of-day REST API.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
	limiter *ratelimit.Limiter

	// Tiingo free tier allows bursts but throttles sustained request rates.
	rateCapacity float64
	ratePerSec   float64
}

// New creates a new Tiingo SeriesSource.
func New(apiKey, baseURL string, timeout time.Duration, requestsPerMinute int) domrepo.SeriesSource {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		http:         xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:      ratelimit.New(),
		rateCapacity: float64(requestsPerMinute),
		ratePerSec:   float64(requestsPerMinute) / 60.0,
	}
}

type eodPrice struct {
	Date     string  `json:"date"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
}

// Fetch retrieves the full daily close history for a symbol, oldest first.
func (c *Client) Fetch(ctx context.Context, symbol string) (*models.Series, error) {
	if !c.limiter.Allow("tiingo", c.rateCapacity, c.ratePerSec) {
		return nil, fmt.Errorf("tiingo %s: request rate exceeded", symbol)
	}

	var prices []eodPrice
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/tiingo/daily/%s/prices", c.baseURL, symbol),
		Headers: map[string]string{
			"Authorization": "Token " + c.apiKey,
		},
		QueryParams: map[string][]string{
			"format": {"json"},
		},
	}, &prices)
	if err != nil {
		return nil, fmt.Errorf("tiingo fetch %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("tiingo fetch %s: empty price history", symbol)
	}

	series := &models.Series{Symbol: symbol, Points: make([]models.PricePoint, 0, len(prices))}
	for _, p := range prices {
		d, err := time.Parse(time.RFC3339, p.Date)
		if err != nil {
			return nil, fmt.Errorf("tiingo fetch %s: bad date %q: %w", symbol, p.Date, err)
		}
		series.Points = append(series.Points, models.PricePoint{Date: d, Close: p.Close})
	}

	// The API returns ascending dates; enforce it anyway since everything
	// downstream assumes strict chronological order.
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})

	return series, nil
}
