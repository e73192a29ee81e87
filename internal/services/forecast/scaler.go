package forecast

// Scaler maps a series into [0,1] with a min-max affine transform. The
// min/max fitted by FitTransform are reused for every later transform and
// inverse for the lifetime of a model version; retraining refits them.
type Scaler struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Fitted bool    `json:"fitted"`
}

// NewScaler returns an unfitted scaler.
func NewScaler() *Scaler { return &Scaler{} }

// FitTransform computes min/max over the given series and returns the scaled
// copy. A constant or empty series has zero range and cannot be scaled.
func (s *Scaler) FitTransform(series []float64) ([]float64, error) {
	if len(series) == 0 {
		return nil, &DegenerateSeriesError{Length: 0}
	}

	min, max := series[0], series[0]
	for _, v := range series[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return nil, &DegenerateSeriesError{Value: min, Length: len(series)}
	}

	s.Min = min
	s.Max = max
	s.Fitted = true

	return s.Transform(series)
}

// Transform applies the fitted affine map to the given values.
func (s *Scaler) Transform(values []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(values))
	rng := s.Max - s.Min
	for i, v := range values {
		out[i] = (v - s.Min) / rng
	}
	return out, nil
}

// InverseTransform applies the exact inverse affine map.
func (s *Scaler) InverseTransform(scaled []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(scaled))
	rng := s.Max - s.Min
	for i, v := range scaled {
		out[i] = v*rng + s.Min
	}
	return out, nil
}

// InverseValue inverse-transforms a single scaled value.
func (s *Scaler) InverseValue(v float64) (float64, error) {
	if !s.Fitted {
		return 0, ErrNotFitted
	}
	return v*(s.Max-s.Min) + s.Min, nil
}
