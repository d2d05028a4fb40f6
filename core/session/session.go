// Package session owns the protocol state of one conversation: the
// session/prompt/content identifiers and the ordering rules for every
// outbound event.
//
// Ordering invariants enforced here: a content stream is opened before any
// payload is sent on it and closed before the prompt ends, and the prompt
// ends before the session ends. All identifiers are generated once at
// construction and never regenerated mid-session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/koscakluka/sonic-core/core/transport"
	"github.com/koscakluka/sonic-core/core/wire"
	"go.opentelemetry.io/otel/codes"
)

// State is the lifecycle position of the session.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateOpen
	StateEnding
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateOpen:
		return "open"
	case StateEnding:
		return "ending"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Ordering errors. Every operation invalid in the current state fails with
// one of these wrapped in positional context.
var (
	ErrAlreadyStarted    = errors.New("session already started")
	ErrNotOpen           = errors.New("session not open")
	ErrAudioInputOpen    = errors.New("audio input already open")
	ErrAudioInputNotOpen = errors.New("audio input not open")
)

// Session sequences the outbound half of the conversation protocol. It is
// the only writer of protocol state; other components call its narrow
// operations and never touch state directly.
type Session struct {
	mu        sync.Mutex
	transport transport.Transport
	options   Options

	state     State
	audioOpen bool
	active    bool

	promptID        string
	systemContentID string
	audioContentID  string
}

// New creates a session over the given transport. Identifiers are fixed
// here for the whole session lifetime.
func New(t transport.Transport, opts ...Option) *Session {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Session{
		transport:       t,
		options:         options,
		promptID:        uuid.NewString(),
		systemContentID: uuid.NewString(),
		audioContentID:  uuid.NewString(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsActive reports whether the session is accepting audio. It turns false
// the moment shutdown begins, before the closing events go out.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// PromptID returns the prompt identifier inbound events should correlate
// with.
func (s *Session) PromptID() string {
	return s.promptID
}

// Voice returns the configured voice identifier.
func (s *Session) Voice() string {
	return s.options.Voice
}

// sendLocked encodes and sends one event. Callers hold s.mu, which is what
// guarantees outbound events hit the transport in call order.
func (s *Session) sendLocked(ctx context.Context, event wire.Event) error {
	data, err := wire.Encode(event)
	if err != nil {
		return err
	}
	if err := s.transport.Send(ctx, data); err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}
	return nil
}

// Start opens the session: session configuration, prompt start, then the
// system prompt as a complete TEXT content stream, in strict order. Valid
// only once, from the idle state.
func (s *Session) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "start session")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		err := fmt.Errorf("cannot start session in state %v: %w", s.state, ErrAlreadyStarted)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.state = StateStarting

	sequence := []wire.Event{
		wire.NewSessionStart(s.options.Inference),
		wire.NewPromptStart(s.promptID, s.options.Voice, s.options.ToolConfiguration),
		wire.NewTextContentStart(s.promptID, s.systemContentID, wire.RoleSystem),
		wire.NewTextInput(s.promptID, s.systemContentID, s.options.SystemPrompt),
		wire.NewContentEnd(s.promptID, s.systemContentID),
	}
	for _, event := range sequence {
		if err := s.sendLocked(ctx, event); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	s.state = StateOpen
	s.active = true
	return nil
}

// OpenAudioInput opens the single user AUDIO content stream. Valid only
// while the session is open and no audio input is open; opening twice is
// an ordering error, not a no-op.
func (s *Session) OpenAudioInput(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return fmt.Errorf("cannot open audio input in state %v: %w", s.state, ErrNotOpen)
	}
	if s.audioOpen {
		return ErrAudioInputOpen
	}

	if err := s.sendLocked(ctx, wire.NewAudioContentStart(s.promptID, s.audioContentID)); err != nil {
		return err
	}
	s.audioOpen = true
	return nil
}

// SendAudio sends one captured PCM chunk on the open audio stream.
//
// A chunk arriving after shutdown began is dropped silently: the capture
// device routinely outlives the conversation by a read or two. A chunk
// sent with no audio stream open is an ordering error; it is never emitted
// under a wrong or absent content id.
func (s *Session) SendAudio(ctx context.Context, pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}
	if !s.audioOpen {
		return fmt.Errorf("cannot send audio chunk: %w", ErrAudioInputNotOpen)
	}

	return s.sendLocked(ctx, wire.NewAudioInput(s.promptID, s.audioContentID, pcm))
}

// CloseAudioInput closes the user AUDIO content stream.
func (s *Session) CloseAudioInput(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.audioOpen {
		return ErrAudioInputNotOpen
	}

	if err := s.sendLocked(ctx, wire.NewContentEnd(s.promptID, s.audioContentID)); err != nil {
		return err
	}
	s.audioOpen = false
	return nil
}

// SendToolResult answers a toolUse request on a fresh TOOL content stream:
// content start, result payload, content end.
func (s *Session) SendToolResult(ctx context.Context, toolUseID, content string) error {
	ctx, span := tracer.Start(ctx, "send tool result")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return fmt.Errorf("cannot send tool result in state %v: %w", s.state, ErrNotOpen)
	}

	contentID := uuid.NewString()
	sequence := []wire.Event{
		wire.NewToolContentStart(s.promptID, contentID, toolUseID),
		wire.NewToolResult(s.promptID, contentID, content),
		wire.NewContentEnd(s.promptID, contentID),
	}
	for _, event := range sequence {
		if err := s.sendLocked(ctx, event); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return nil
}

// Deactivate marks the session as no longer accepting audio. Capture may
// still be draining; its chunks are dropped from here on.
func (s *Session) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// End closes the conversation: audio input first if still open, then
// prompt end, session end, and the transport. Idempotent; calling it on a
// closed or never-started session is a no-op.
func (s *Session) End(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "end session")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return nil
	}
	s.state = StateEnding
	s.active = false

	// A dead transport must not leave the session half-closed: keep going
	// through the closing sequence and report the first failure.
	var firstErr error
	record := func(err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if firstErr == nil {
			firstErr = err
		}
	}

	if s.audioOpen {
		if err := s.sendLocked(ctx, wire.NewContentEnd(s.promptID, s.audioContentID)); err != nil {
			record(err)
		}
		s.audioOpen = false
	}

	for _, event := range []wire.Event{wire.NewPromptEnd(s.promptID), wire.NewSessionEnd()} {
		if err := s.sendLocked(ctx, event); err != nil {
			record(err)
		}
	}

	if err := s.transport.Close(); err != nil {
		record(fmt.Errorf("failed to close transport: %w", err))
	}
	s.state = StateClosed
	return firstErr
}
