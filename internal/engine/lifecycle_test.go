package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	apierrors "github.com/diogo/localchat/internal/errors"
)

// fakeAPI replays a scripted sequence of model statuses
type fakeAPI struct {
	loadErr      error
	statuses     []ModelStatus
	statusErr    error
	defaultsErr  error
	loadCalls    int
	defaultsTemp float64
	idx          int
}

func (f *fakeAPI) LoadModel(ctx context.Context, modelID string) error {
	f.loadCalls++
	return f.loadErr
}

func (f *fakeAPI) GetModelStatus(ctx context.Context, modelID string) (*ModelStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	status := f.statuses[f.idx]
	if f.idx < len(f.statuses)-1 {
		f.idx++
	}
	return &status, nil
}

func (f *fakeAPI) ApplyDefaults(ctx context.Context, temperature float64) error {
	f.defaultsTemp = temperature
	return f.defaultsErr
}

func newTestManager(api loaderAPI) *Manager {
	m := newManager(api)
	m.pollInterval = time.Millisecond
	return m
}

func TestLoadSuccess(t *testing.T) {
	api := &fakeAPI{
		statuses: []ModelStatus{
			{ID: "m", Status: StatusLoading, Progress: 0.3},
			{ID: "m", Status: StatusLoading, Progress: 0.8},
			{ID: "m", Status: StatusReady, Loaded: true, Progress: 1},
		},
	}
	mgr := newTestManager(api)

	var reports []Progress
	err := mgr.Load(context.Background(), "m", 0.7, func(p Progress) {
		reports = append(reports, p)
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if mgr.State() != StateReady {
		t.Errorf("got state %v, want ready", mgr.State())
	}
	if mgr.Model() != "m" {
		t.Errorf("got model %q, want %q", mgr.Model(), "m")
	}
	if api.defaultsTemp != 0.7 {
		t.Errorf("got defaults temperature %v, want 0.7", api.defaultsTemp)
	}

	if len(reports) < 3 {
		t.Fatalf("got %d progress reports, want at least 3", len(reports))
	}
	last := reports[len(reports)-1]
	if last.Fraction != 1 || last.Failed {
		t.Errorf("unexpected final report: %+v", last)
	}
	for i := 1; i < len(reports); i++ {
		if reports[i].Fraction < reports[i-1].Fraction {
			t.Errorf("progress went backwards: %v then %v", reports[i-1].Fraction, reports[i].Fraction)
		}
	}
}

func TestLoadFailureOutOfMemory(t *testing.T) {
	api := &fakeAPI{
		statuses: []ModelStatus{
			{ID: "m", Status: StatusLoading, Progress: 0.5},
			{ID: "m", Status: StatusFailed, Error: "failed to allocate 8 GiB: out of memory"},
		},
	}
	mgr := newTestManager(api)

	var reports []Progress
	err := mgr.Load(context.Background(), "m", 0, func(p Progress) {
		reports = append(reports, p)
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if apierrors.GetLoadFailureKind(err) != apierrors.LoadFailureOutOfMemory {
		t.Errorf("got kind %v, want out of memory", apierrors.GetLoadFailureKind(err))
	}
	if mgr.State() != StateUnloaded {
		t.Errorf("got state %v, want unloaded after failure", mgr.State())
	}
	if mgr.Model() != "" {
		t.Errorf("model should be empty after failure, got %q", mgr.Model())
	}
	if !reports[len(reports)-1].Failed {
		t.Error("final progress report should be marked failed")
	}
}

func TestLoadFailureConnection(t *testing.T) {
	api := &fakeAPI{loadErr: apierrors.NewNetworkError(EndpointLoad, errors.New("connection refused"))}
	mgr := newTestManager(api)

	err := mgr.Load(context.Background(), "m", 0, nil)
	if apierrors.GetLoadFailureKind(err) != apierrors.LoadFailureConnection {
		t.Errorf("got kind %v, want connection", apierrors.GetLoadFailureKind(err))
	}
	if mgr.State() != StateUnloaded {
		t.Errorf("got state %v, want unloaded", mgr.State())
	}
}

func TestLoadFailureModelNotFound(t *testing.T) {
	api := &fakeAPI{loadErr: apierrors.ErrModelNotFound}
	mgr := newTestManager(api)

	err := mgr.Load(context.Background(), "nope", 0, nil)
	if apierrors.GetLoadFailureKind(err) != apierrors.LoadFailureModelNotFound {
		t.Errorf("got kind %v, want model not found", apierrors.GetLoadFailureKind(err))
	}
	if !errors.Is(err, apierrors.ErrModelNotFound) {
		t.Errorf("error should match sentinel, got %v", err)
	}
}

func TestLoadWhileLoadingIsNoop(t *testing.T) {
	api := &fakeAPI{}
	mgr := newTestManager(api)
	mgr.state = StateLoading

	if err := mgr.Load(context.Background(), "m", 0, nil); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if api.loadCalls != 0 {
		t.Errorf("load requested %d times during in-flight load", api.loadCalls)
	}
	if mgr.State() != StateLoading {
		t.Errorf("got state %v, want loading", mgr.State())
	}
}

func TestLoadDefaultsFailureIsNotFatal(t *testing.T) {
	api := &fakeAPI{
		statuses:    []ModelStatus{{ID: "m", Status: StatusReady, Loaded: true, Progress: 1}},
		defaultsErr: errors.New("unsupported"),
	}
	mgr := newTestManager(api)

	if err := mgr.Load(context.Background(), "m", 0.9, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if mgr.State() != StateReady {
		t.Errorf("got state %v, want ready", mgr.State())
	}
}

func TestLoadCancelled(t *testing.T) {
	api := &fakeAPI{
		statuses: []ModelStatus{{ID: "m", Status: StatusLoading, Progress: 0.1}},
	}
	mgr := newTestManager(api)
	mgr.pollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mgr.Load(ctx, "m", 0, nil)
	if !apierrors.IsCancellation(err) {
		t.Errorf("expected cancellation, got %v", err)
	}
	if mgr.State() != StateUnloaded {
		t.Errorf("got state %v, want unloaded", mgr.State())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnloaded, "unloaded"},
		{StateLoading, "loading"},
		{StateReady, "ready"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
