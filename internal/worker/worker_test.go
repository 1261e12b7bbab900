package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
	"github.com/nyashahama/scas-screening-backend/internal/store"
)

// ─── STUBS ───────────────────────────────────────────────────────────────────

type stubTrainer struct {
	mu    sync.Mutex
	res   classifier.TrainResult
	err   error
	calls int
}

func (s *stubTrainer) Train(context.Context) (classifier.TrainResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.res, s.err
}

func (s *stubTrainer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubInstaller struct{ installed []*classifier.Model }

func (s *stubInstaller) Install(m *classifier.Model) { s.installed = append(s.installed, m) }

type stubRecorder struct {
	runs []store.TrainingRunParams
	err  error
}

func (s *stubRecorder) RecordTrainingRun(_ context.Context, p store.TrainingRunParams) (db.TrainingRun, error) {
	s.runs = append(s.runs, p)
	return db.TrainingRun{}, s.err
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func trainedResult() classifier.TrainResult {
	return classifier.TrainResult{Samples: 40, Trained: true, Location: "mem", Model: &classifier.Model{}}
}

// ─── Job ─────────────────────────────────────────────────────────────────────

func TestJob_InstallsAndRecordsTrainedModel(t *testing.T) {
	tr := &stubTrainer{res: trainedResult()}
	inst := &stubInstaller{}
	rec := &stubRecorder{}
	job := NewJob(tr, inst, rec, discardLogger())

	res, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Trained || len(inst.installed) != 1 || inst.installed[0] != res.Model {
		t.Error("trained model must be installed")
	}
	if len(rec.runs) != 1 || !rec.runs[0].Trained || rec.runs[0].Samples != 40 || rec.runs[0].Location != "mem" {
		t.Errorf("recorded run: %+v", rec.runs)
	}
	if rec.runs[0].FinishedAt.Before(rec.runs[0].StartedAt) {
		t.Error("finished before started")
	}
}

func TestJob_BelowThresholdRecordsWithoutInstall(t *testing.T) {
	tr := &stubTrainer{res: classifier.TrainResult{Samples: 5}}
	inst := &stubInstaller{}
	rec := &stubRecorder{}

	if _, err := NewJob(tr, inst, rec, discardLogger()).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(inst.installed) != 0 {
		t.Error("nothing should be installed below threshold")
	}
	if len(rec.runs) != 1 || rec.runs[0].Trained {
		t.Errorf("recorded run: %+v", rec.runs)
	}
}

func TestJob_TrainErrorIsReturnedAndNotRecorded(t *testing.T) {
	tr := &stubTrainer{err: errors.New("fit failed")}
	rec := &stubRecorder{}
	if _, err := NewJob(tr, &stubInstaller{}, rec, discardLogger()).Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.runs) != 0 {
		t.Error("failed training must not be recorded")
	}
}

func TestJob_RecorderFailureIsNotFatal(t *testing.T) {
	tr := &stubTrainer{res: trainedResult()}
	rec := &stubRecorder{err: errors.New("db down")}
	if _, err := NewJob(tr, &stubInstaller{}, rec, discardLogger()).Run(context.Background()); err != nil {
		t.Errorf("Run: %v", err)
	}
}

// ─── Runner ──────────────────────────────────────────────────────────────────

func newTestRunner(tr *stubTrainer, cfg RunnerConfig) *Runner {
	job := NewJob(tr, &stubInstaller{}, &stubRecorder{}, discardLogger())
	return NewRunner(job, cfg, discardLogger())
}

func TestRunner_RunNow(t *testing.T) {
	tr := &stubTrainer{res: trainedResult()}
	r := newTestRunner(tr, RunnerConfig{})

	res, err := r.RunNow(context.Background())
	if err != nil || !res.Trained {
		t.Fatalf("RunNow: %+v, %v", res, err)
	}
}

func TestRunner_RunNowBusy(t *testing.T) {
	r := newTestRunner(&stubTrainer{}, RunnerConfig{})
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.RunNow(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestRunner_CountTriggerCoalesces(t *testing.T) {
	r := newTestRunner(&stubTrainer{}, RunnerConfig{RetrainEvery: 3})

	for range 2 {
		r.SubmissionAccepted(context.Background(), screening.Result{})
	}
	if len(r.queue) != 0 {
		t.Fatal("enqueued before threshold")
	}
	r.SubmissionAccepted(context.Background(), screening.Result{})
	if len(r.queue) != 1 {
		t.Fatal("not enqueued at threshold")
	}
	for range 3 {
		r.SubmissionAccepted(context.Background(), screening.Result{})
	}
	if len(r.queue) != 1 {
		t.Error("pending passes must coalesce")
	}
}

func TestRunner_CountTriggerDisabled(t *testing.T) {
	r := newTestRunner(&stubTrainer{}, RunnerConfig{})
	for range 100 {
		r.SubmissionAccepted(context.Background(), screening.Result{})
	}
	if len(r.queue) != 0 {
		t.Error("RetrainEvery=0 must not enqueue")
	}
}

func TestRunner_StartProcessesQueue(t *testing.T) {
	tr := &stubTrainer{res: trainedResult()}
	r := newTestRunner(tr, RunnerConfig{MaxRetries: 1})
	r.Enqueue()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for tr.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("queued pass never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
