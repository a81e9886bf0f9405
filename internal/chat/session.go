// Package chat coordinates generation sessions: prompt assembly, streaming
// into the transcript, and cooperative cancellation.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/engine"
	apierrors "github.com/diogo/localchat/internal/errors"
	"github.com/diogo/localchat/internal/history"
	"github.com/diogo/localchat/internal/models"
)

// CancelledMarker replaces the assistant content when the user cancels
// a generation in flight.
const CancelledMarker = "[generation interrupted]"

// FailureMessage replaces the assistant content when generation fails.
// The underlying error is not persisted.
const FailureMessage = "Something went wrong while generating a response. Please try again."

// Completer is the generation surface of the engine client
type Completer interface {
	StreamComplete(ctx context.Context, req engine.ChatRequest, fn engine.FragmentFunc) (string, error)
	Complete(ctx context.Context, req engine.ChatRequest) (string, error)
}

// ModelLoader is the lifecycle surface the session needs
type ModelLoader interface {
	Ready() bool
	Load(ctx context.Context, modelID string, temperature float64, onProgress engine.ProgressFunc) error
}

// UpdateFunc is notified with the full transcript after every mutation
type UpdateFunc func(messages []models.Message)

// Session owns one conversation transcript and drives generation against
// the engine. At most one generation is in flight at a time; the caller
// is expected to gate new sends on Busy.
type Session struct {
	client  Completer
	loader  ModelLoader
	store   *history.Store
	convID  string
	loadCfg func() config.Config

	onUpdate   UpdateFunc
	onProgress engine.ProgressFunc

	mu       sync.Mutex
	messages []models.Message
	cancel   context.CancelFunc
	busy     bool
}

// Option configures a session
type Option func(*Session)

// WithUpdateFunc registers a callback invoked after each transcript change
func WithUpdateFunc(fn UpdateFunc) Option {
	return func(s *Session) { s.onUpdate = fn }
}

// WithProgressFunc registers a callback for model load progress
func WithProgressFunc(fn engine.ProgressFunc) Option {
	return func(s *Session) { s.onProgress = fn }
}

// WithSettingsLoader overrides how settings are read at send time
func WithSettingsLoader(fn func() config.Config) Option {
	return func(s *Session) { s.loadCfg = fn }
}

// NewSession creates a session bound to an existing conversation. Any
// messages already persisted for the conversation are loaded into the
// transcript; a corrupt transcript starts empty.
func NewSession(client Completer, loader ModelLoader, store *history.Store, conversationID string, opts ...Option) *Session {
	s := &Session{
		client: client,
		loader: loader,
		store:  store,
		convID: conversationID,
		loadCfg: func() config.Config {
			cfg, _ := config.LoadConfig()
			return cfg
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.messages = store.LoadMessages(conversationID)
	return s
}

// ConversationID returns the backing conversation's identifier
func (s *Session) ConversationID() string {
	return s.convID
}

// Messages returns a copy of the current transcript
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Busy reports whether a generation is in flight
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Stop fires the current generation's cancellation token. The token is
// one-shot; calling Stop with no generation in flight does nothing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Clear empties the transcript in memory and on disk
func (s *Session) Clear() error {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()

	if err := s.store.SetMessages(s.convID, nil); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Send submits user input and streams the assistant's reply into the
// transcript. Empty or whitespace-only input is a no-op. The engine is
// loaded lazily on first send; a load failure aborts the send and is
// returned. Generation failures and cancellation are recorded inline in
// the transcript and do not produce an error.
func (s *Session) Send(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	cfg := s.loadCfg()

	if !s.loader.Ready() {
		if err := s.loader.Load(ctx, cfg.DefaultModel, cfg.Temperature, s.onProgress); err != nil {
			return err
		}
	}

	// Prompt context is the optional system entry plus the full transcript;
	// the engine is the sole authority on context-length limits.
	s.mu.Lock()
	prompt := make([]models.Message, 0, len(s.messages)+2)
	if sys := strings.TrimSpace(cfg.SystemPrompt); sys != "" {
		prompt = append(prompt, models.Message{Role: models.RoleSystem, Content: sys})
	}
	prompt = append(prompt, s.messages...)
	prompt = append(prompt, models.Message{Role: models.RoleUser, Content: input})
	s.mu.Unlock()

	s.append(models.RoleUser, input)
	s.append(models.RoleAssistant, "")

	genCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.busy = false
		s.mu.Unlock()
	}()

	req := engine.ChatRequest{
		Model:       cfg.DefaultModel,
		Messages:    prompt,
		Temperature: cfg.Temperature,
	}

	var acc strings.Builder
	full, err := s.client.StreamComplete(genCtx, req, func(fragment string) error {
		// never apply fragments that arrive after the token fired
		if genCtx.Err() != nil {
			return genCtx.Err()
		}
		acc.WriteString(fragment)
		s.setLast(acc.String())
		return nil
	})

	switch {
	case apierrors.IsCancellation(err):
		s.setLast(CancelledMarker)
	case err != nil:
		s.setLast(FailureMessage)
	case full == "":
		s.fallback(genCtx, req)
	}

	return nil
}

// fallback issues a single non-streaming completion when the stream
// produced no fragments
func (s *Session) fallback(ctx context.Context, req engine.ChatRequest) {
	text, err := s.client.Complete(ctx, req)
	switch {
	case apierrors.IsCancellation(err):
		s.setLast(CancelledMarker)
	case err != nil:
		s.setLast(FailureMessage)
	default:
		s.setLast(text)
	}
}

// append adds a message to the transcript, persists it, and notifies
func (s *Session) append(role, content string) {
	s.mu.Lock()
	s.messages = append(s.messages, models.Message{Role: role, Content: content})
	s.mu.Unlock()

	_ = s.store.AddMessage(s.convID, role, content)
	s.notify()
}

// setLast overwrites the last transcript entry, persists it, and notifies
func (s *Session) setLast(content string) {
	s.mu.Lock()
	if len(s.messages) == 0 {
		s.mu.Unlock()
		return
	}
	s.messages[len(s.messages)-1].Content = content
	s.mu.Unlock()

	_ = s.store.UpdateLastMessage(s.convID, content)
	s.notify()
}

func (s *Session) notify() {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(s.Messages())
}
