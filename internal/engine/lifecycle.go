package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apierrors "github.com/diogo/localchat/internal/errors"
)

// State is the lifecycle state of the managed model
type State int

const (
	// StateUnloaded means no model is resident and generation is unavailable
	StateUnloaded State = iota
	// StateLoading means a load is in flight
	StateLoading
	// StateReady means the model is resident and generation may proceed
	StateReady
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Progress is one load progress report
type Progress struct {
	Fraction float64 // 0..1
	Status   string  // engine status text, e.g. "loading tensors"
	Failed   bool
}

// ProgressFunc receives load progress reports in order
type ProgressFunc func(Progress)

// loaderAPI is the slice of the engine client the manager needs
type loaderAPI interface {
	LoadModel(ctx context.Context, modelID string) error
	GetModelStatus(ctx context.Context, modelID string) (*ModelStatus, error)
	ApplyDefaults(ctx context.Context, temperature float64) error
}

// Manager tracks the engine's model lifecycle. A load transitions
// Unloaded -> Loading -> Ready; on failure the state returns to Unloaded
// and the classified error is reported. Loads are not retried; the caller
// must request another load explicitly.
type Manager struct {
	api          loaderAPI
	pollInterval time.Duration

	mu    sync.Mutex
	state State
	model string
}

// NewManager creates a lifecycle manager backed by the given client
func NewManager(client *Client) *Manager {
	return newManager(client)
}

func newManager(api loaderAPI) *Manager {
	return &Manager{
		api:          api,
		pollInterval: 250 * time.Millisecond,
		state:        StateUnloaded,
	}
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Model returns the loaded model's identifier, or "" when no model is ready
func (m *Manager) Model() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady {
		return ""
	}
	return m.model
}

// Ready reports whether a model is resident
func (m *Manager) Ready() bool {
	return m.State() == StateReady
}

// Reset drops back to Unloaded so the next send loads a fresh model.
// Used when the configured model changes. A reset during an in-flight
// load is ignored.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateLoading {
		return
	}
	m.state = StateUnloaded
	m.model = ""
}

// Load requests a model load and polls until the engine reports the model
// ready or failed. Progress reports are forwarded to onProgress in order.
// A Load while another load is in flight is a no-op. After a successful
// load the configured temperature is applied as an engine default; a
// failure to apply it does not fail the load.
func (m *Manager) Load(ctx context.Context, modelID string, temperature float64, onProgress ProgressFunc) error {
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	m.mu.Lock()
	if m.state == StateLoading {
		m.mu.Unlock()
		return nil
	}
	m.state = StateLoading
	m.model = ""
	m.mu.Unlock()

	onProgress(Progress{Fraction: 0, Status: "requesting load"})

	if err := m.api.LoadModel(ctx, modelID); err != nil {
		return m.fail(onProgress, classifyLoadFailure(modelID, err, ""))
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		status, err := m.api.GetModelStatus(ctx, modelID)
		if err != nil {
			return m.fail(onProgress, classifyLoadFailure(modelID, err, ""))
		}

		switch {
		case status.Status == StatusFailed:
			err := classifyLoadFailure(modelID, nil, status.Error)
			return m.fail(onProgress, err)
		case status.Loaded || status.Status == StatusReady:
			m.finish(modelID)
			m.applyDefaults(ctx, temperature, onProgress)
			onProgress(Progress{Fraction: 1, Status: StatusReady})
			return nil
		default:
			onProgress(Progress{Fraction: status.Progress, Status: status.Status})
		}

		select {
		case <-ctx.Done():
			return m.fail(onProgress, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (m *Manager) finish(modelID string) {
	m.mu.Lock()
	m.state = StateReady
	m.model = modelID
	m.mu.Unlock()
}

func (m *Manager) fail(onProgress ProgressFunc, err error) error {
	m.mu.Lock()
	m.state = StateUnloaded
	m.model = ""
	m.mu.Unlock()

	onProgress(Progress{Failed: true, Status: err.Error()})
	return err
}

// applyDefaults is best effort; the model is already usable
func (m *Manager) applyDefaults(ctx context.Context, temperature float64, onProgress ProgressFunc) {
	if temperature <= 0 {
		return
	}
	if err := m.api.ApplyDefaults(ctx, temperature); err != nil {
		onProgress(Progress{Fraction: 1, Status: fmt.Sprintf("default temperature not applied: %v", err)})
	}
}

// classifyLoadFailure maps a load failure to a structured error. The
// engine reports failure detail as free text, so out-of-memory detection
// is substring based.
func classifyLoadFailure(modelID string, err error, detail string) error {
	msg := detail
	if msg == "" && err != nil {
		msg = err.Error()
	}

	kind := apierrors.LoadFailureUnknown
	switch {
	case err != nil && apierrors.IsNetworkError(err):
		kind = apierrors.LoadFailureConnection
	case err != nil && errors.Is(err, apierrors.ErrModelNotFound):
		kind = apierrors.LoadFailureModelNotFound
	case isOutOfMemory(msg):
		kind = apierrors.LoadFailureOutOfMemory
	}

	return apierrors.NewLoadError(kind, modelID, msg, err)
}

func isOutOfMemory(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "out of memory") ||
		strings.Contains(lower, "oom") ||
		strings.Contains(lower, "failed to allocate")
}
