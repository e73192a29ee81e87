package models

import "time"

// PricePoint is one daily closing observation.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is a chronologically ordered daily close series for one symbol.
// Dates are strictly increasing; missing trading days are simply absent.
type Series struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Closes returns the raw close values in chronological order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Points) }

// LastDate returns the date of the most recent observation.
func (s *Series) LastDate() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// PriceStats summarizes the close distribution of a series.
type PriceStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// DateRange is the first/last observation dates of a series.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DataSummary describes the loaded series for the status/data endpoints.
type DataSummary struct {
	Symbol       string     `json:"symbol"`
	TotalRecords int        `json:"total_records"`
	DateRange    DateRange  `json:"date_range"`
	LatestPrice  float64    `json:"latest_price"`
	PriceStats   PriceStats `json:"price_stats"`
}
