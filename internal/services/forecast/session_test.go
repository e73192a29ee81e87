package forecast

import (
	"errors"
	"sync"
	"testing"

	"StockCast/internal/domain/models"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	if st := s.Status(); st.State != models.TrainingIdle {
		t.Fatalf("initial state %s", st.State)
	}

	if err := s.BeginTraining(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !s.Training() {
		t.Fatalf("expected training state")
	}

	s.SetProgress(50, "epoch 50/100")
	if st := s.Status(); st.Progress != 50 || st.Message != "epoch 50/100" {
		t.Fatalf("progress not recorded: %+v", st)
	}

	s.FinishTraining(&models.Metrics{TrainRMSE: 1, TestRMSE: 2}, nil)
	st := s.Status()
	if st.State != models.TrainingSucceeded {
		t.Fatalf("state %s, want succeeded", st.State)
	}
	if st.Result == nil || st.Result.TestRMSE != 2 {
		t.Fatalf("result not recorded: %+v", st)
	}
	if st.Progress != 100 {
		t.Fatalf("progress %d, want 100", st.Progress)
	}
}

func TestSessionFailureRecordsError(t *testing.T) {
	s := NewSession()
	if err := s.BeginTraining(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	s.FinishTraining(nil, errors.New("regressor fit: boom"))

	st := s.Status()
	if st.State != models.TrainingFailed {
		t.Fatalf("state %s, want failed", st.State)
	}
	if st.Error != "regressor fit: boom" {
		t.Fatalf("error %q", st.Error)
	}
}

func TestSessionRejectsConcurrentTraining(t *testing.T) {
	s := NewSession()
	if err := s.BeginTraining(); err != nil {
		t.Fatalf("first begin: %v", err)
	}
	if err := s.BeginTraining(); !errors.Is(err, ErrTrainingInProgress) {
		t.Fatalf("second begin: expected ErrTrainingInProgress, got %v", err)
	}

	s.FinishTraining(nil, nil)
	if err := s.BeginTraining(); err != nil {
		t.Fatalf("retrain after finish: %v", err)
	}
	s.FinishTraining(nil, nil)
}

func TestSessionReadsExcludedFromTraining(t *testing.T) {
	s := NewSession()
	if err := s.BeginTraining(); err != nil {
		t.Fatalf("begin: %v", err)
	}

	readDone := make(chan struct{})
	go func() {
		_ = s.Read(func() error { return nil })
		close(readDone)
	}()

	select {
	case <-readDone:
		t.Fatalf("read completed while training held the write side")
	default:
	}

	s.FinishTraining(nil, nil)
	<-readDone
}

func TestSessionConcurrentReads(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Read(func() error { return nil })
		}()
	}
	wg.Wait()
}
