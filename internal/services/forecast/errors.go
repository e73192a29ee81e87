package forecast

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFitted is returned when a scaler transform is requested before FitTransform.
	ErrNotFitted = errors.New("scaler not fitted")

	// ErrModelNotTrained is returned by forecast/reconstruct before a successful training run.
	ErrModelNotTrained = errors.New("model not trained")

	// ErrTrainingInProgress is returned when a training run is already active.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// DegenerateSeriesError reports a constant (zero-range) series that cannot be scaled.
type DegenerateSeriesError struct {
	Value  float64
	Length int
}

func (e *DegenerateSeriesError) Error() string {
	return fmt.Sprintf("degenerate series: all %d values equal %g, min-max range is zero", e.Length, e.Value)
}

// InsufficientDataError reports a partition too short to produce any window.
type InsufficientDataError struct {
	Length   int
	Lookback int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("partition length %d insufficient for lookback %d", e.Length, e.Lookback)
}

// InsufficientHistoryError reports a seed window shorter than the lookback.
type InsufficientHistoryError struct {
	Have int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("seed window has %d values, lookback requires %d", e.Have, e.Need)
}
