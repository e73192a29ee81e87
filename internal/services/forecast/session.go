package forecast

import (
	"sync"
	"time"

	"StockCast/internal/domain/models"
)

// Session is the training-state machine for one model/scaler pair:
// Idle -> Training -> {Succeeded, Failed}. It also enforces the exclusion
// rules: at most one training run at a time (a second request is rejected as
// busy, never queued), and forecast/historical reads are serialized against
// an in-flight training run while remaining concurrent with each other.
type Session struct {
	mu sync.RWMutex // write side held for the whole training run

	stateMu sync.Mutex
	status  models.TrainingStatus
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{status: models.TrainingStatus{State: models.TrainingIdle}}
}

// BeginTraining transitions Idle/Succeeded/Failed -> Training and takes the
// write side. Returns ErrTrainingInProgress if a run is already active.
func (s *Session) BeginTraining() error {
	if !s.mu.TryLock() {
		return ErrTrainingInProgress
	}

	now := time.Now()
	s.stateMu.Lock()
	s.status = models.TrainingStatus{
		State:     models.TrainingRunning,
		Message:   "training started",
		StartedAt: &now,
	}
	s.stateMu.Unlock()
	return nil
}

// SetProgress updates the visible progress of an active run.
func (s *Session) SetProgress(pct int, msg string) {
	s.stateMu.Lock()
	if s.status.State == models.TrainingRunning {
		s.status.Progress = pct
		s.status.Message = msg
	}
	s.stateMu.Unlock()
}

// FinishTraining transitions Training -> Succeeded or Failed and releases
// the write side, letting blocked readers proceed.
func (s *Session) FinishTraining(result *models.Metrics, err error) {
	now := time.Now()
	s.stateMu.Lock()
	s.status.FinishedAt = &now
	if err != nil {
		s.status.State = models.TrainingFailed
		s.status.Error = err.Error()
		s.status.Message = "training failed"
	} else {
		s.status.State = models.TrainingSucceeded
		s.status.Progress = 100
		s.status.Message = "training completed successfully"
		s.status.Result = result
	}
	s.stateMu.Unlock()

	s.mu.Unlock()
}

// Read runs fn under the read side: concurrent with other reads, excluded
// from any active training run.
func (s *Session) Read(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

// Status returns a snapshot of the session state.
func (s *Session) Status() models.TrainingStatus {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.status
}

// Training reports whether a run is currently active.
func (s *Session) Training() bool {
	return s.Status().State == models.TrainingRunning
}
