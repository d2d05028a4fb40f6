package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/koscakluka/sonic-core/core/transport"
	"github.com/koscakluka/sonic-core/core/wire"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   []wire.Event
	closed int
}

func (t *fakeTransport) Send(_ context.Context, data []byte) error {
	event, err := wire.Decode(data)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, event)
	return nil
}

func (t *fakeTransport) Receive(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, transport.ErrClosed
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
	return nil
}

func (t *fakeTransport) events() []wire.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := make([]wire.Event, len(t.sent))
	copy(events, t.sent)
	return events
}

func TestStartSendsOpeningSequenceInOrder(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream, WithVoice("amy"), WithSystemPrompt("be brief"))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	events := stream.events()
	if len(events) != 5 {
		t.Fatalf("expected 5 opening events, got %d", len(events))
	}
	if events[0].SessionStart == nil {
		t.Fatalf("expected sessionStart first, got %+v", events[0])
	}
	if events[0].SessionStart.InferenceConfiguration.MaxTokens != 1024 {
		t.Fatalf("expected default maxTokens 1024, got %d", events[0].SessionStart.InferenceConfiguration.MaxTokens)
	}
	if events[1].PromptStart == nil {
		t.Fatalf("expected promptStart second, got %+v", events[1])
	}
	if events[1].PromptStart.AudioOutputConfiguration.VoiceID != "amy" {
		t.Fatalf("expected configured voice, got %q", events[1].PromptStart.AudioOutputConfiguration.VoiceID)
	}
	if events[2].ContentStart == nil || events[2].ContentStart.Role != wire.RoleSystem || events[2].ContentStart.Type != wire.ContentTypeText {
		t.Fatalf("expected system TEXT contentStart third, got %+v", events[2])
	}
	if events[3].TextInput == nil || events[3].TextInput.Content != "be brief" {
		t.Fatalf("expected system prompt text fourth, got %+v", events[3])
	}
	if events[4].ContentEnd == nil || events[4].ContentEnd.ContentName != events[2].ContentStart.ContentName {
		t.Fatalf("expected contentEnd for the system stream fifth, got %+v", events[4])
	}
	if s.State() != StateOpen {
		t.Fatalf("expected open state after start, got %v", s.State())
	}
}

func TestStartTwiceIsAnOrderingError(t *testing.T) {
	s := New(&fakeTransport{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected first start to succeed, got %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected second start to fail with ErrAlreadyStarted, got %v", err)
	}
}

func TestSendAudioBeforeOpenIsAnOrderingError(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	err := s.SendAudio(context.Background(), []byte{0x00})
	if !errors.Is(err, ErrAudioInputNotOpen) {
		t.Fatalf("expected ErrAudioInputNotOpen, got %v", err)
	}
	for _, event := range stream.events() {
		if event.AudioInput != nil {
			t.Fatalf("expected no audioInput event to be sent, got %+v", event)
		}
	}
}

func TestOpenCloseAudioInputWithoutChunks(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	if err := s.OpenAudioInput(context.Background()); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	if err := s.CloseAudioInput(context.Background()); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}

	var starts, ends, chunks int
	var audioContent string
	for _, event := range stream.events() {
		switch {
		case event.ContentStart != nil && event.ContentStart.Type == wire.ContentTypeAudio:
			starts++
			audioContent = event.ContentStart.ContentName
		case event.ContentEnd != nil && event.ContentEnd.ContentName == audioContent && audioContent != "":
			ends++
		case event.AudioInput != nil:
			chunks++
		}
	}
	if starts != 1 || ends != 1 {
		t.Fatalf("expected exactly one contentStart/contentEnd pair for the audio stream, got %d/%d", starts, ends)
	}
	if chunks != 0 {
		t.Fatalf("expected zero audioInput events, got %d", chunks)
	}
}

func TestOpenAudioInputTwiceIsAnOrderingError(t *testing.T) {
	s := New(&fakeTransport{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	if err := s.OpenAudioInput(context.Background()); err != nil {
		t.Fatalf("expected first open to succeed, got %v", err)
	}
	if err := s.OpenAudioInput(context.Background()); !errors.Is(err, ErrAudioInputOpen) {
		t.Fatalf("expected ErrAudioInputOpen, got %v", err)
	}
}

func TestSendAudioUsesTheOpenContentID(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	if err := s.OpenAudioInput(context.Background()); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	if err := s.SendAudio(context.Background(), []byte{0x00, 0x01, 0x02}); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	events := stream.events()
	var openedContent string
	for _, event := range events {
		if event.ContentStart != nil && event.ContentStart.Type == wire.ContentTypeAudio {
			openedContent = event.ContentStart.ContentName
		}
	}
	last := events[len(events)-1]
	if last.AudioInput == nil {
		t.Fatalf("expected audioInput last, got %+v", last)
	}
	if last.AudioInput.ContentName != openedContent {
		t.Fatalf("expected chunk under content id %q, got %q", openedContent, last.AudioInput.ContentName)
	}
	if last.AudioInput.PromptName != s.PromptID() {
		t.Fatalf("expected chunk under prompt id %q, got %q", s.PromptID(), last.AudioInput.PromptName)
	}
	if last.AudioInput.Content != "AAEC" {
		t.Fatalf("expected base64 payload AAEC, got %q", last.AudioInput.Content)
	}
}

func TestSendAudioAfterDeactivateIsSilentlyDropped(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	if err := s.OpenAudioInput(context.Background()); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}

	s.Deactivate()
	before := len(stream.events())
	if err := s.SendAudio(context.Background(), []byte{0x00}); err != nil {
		t.Fatalf("expected deactivated send to be a no-op, got %v", err)
	}
	if got := len(stream.events()); got != before {
		t.Fatalf("expected no event after deactivation, got %d new", got-before)
	}
}

func TestEndClosesOpenAudioInputBeforePromptEnd(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	if err := s.OpenAudioInput(context.Background()); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}

	if err := s.End(context.Background()); err != nil {
		t.Fatalf("expected end to succeed, got %v", err)
	}

	var audioContent string
	contentEndIndex, promptEndIndex, sessionEndIndex := -1, -1, -1
	for i, event := range stream.events() {
		switch {
		case event.ContentStart != nil && event.ContentStart.Type == wire.ContentTypeAudio:
			audioContent = event.ContentStart.ContentName
		case event.ContentEnd != nil && event.ContentEnd.ContentName == audioContent && audioContent != "":
			contentEndIndex = i
		case event.PromptEnd != nil:
			promptEndIndex = i
		case event.SessionEnd != nil:
			sessionEndIndex = i
		}
	}
	if contentEndIndex == -1 || promptEndIndex == -1 || sessionEndIndex == -1 {
		t.Fatalf("expected contentEnd, promptEnd, and sessionEnd to be sent")
	}
	if !(contentEndIndex < promptEndIndex && promptEndIndex < sessionEndIndex) {
		t.Fatalf("expected contentEnd < promptEnd < sessionEnd, got %d/%d/%d",
			contentEndIndex, promptEndIndex, sessionEndIndex)
	}
	if stream.closed != 1 {
		t.Fatalf("expected transport to be closed once, got %d", stream.closed)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed state, got %v", s.State())
	}
}

func TestEndIsIdempotent(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	if err := s.End(context.Background()); err != nil {
		t.Fatalf("expected first end to succeed, got %v", err)
	}
	if err := s.End(context.Background()); err != nil {
		t.Fatalf("expected second end to be a no-op, got %v", err)
	}

	var promptEnds, sessionEnds int
	for _, event := range stream.events() {
		if event.PromptEnd != nil {
			promptEnds++
		}
		if event.SessionEnd != nil {
			sessionEnds++
		}
	}
	if promptEnds != 1 || sessionEnds != 1 {
		t.Fatalf("expected exactly one promptEnd/sessionEnd pair, got %d/%d", promptEnds, sessionEnds)
	}
}

func TestEndBeforeStartIsANoOp(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	if err := s.End(context.Background()); err != nil {
		t.Fatalf("expected end on idle session to be a no-op, got %v", err)
	}
	if len(stream.events()) != 0 {
		t.Fatalf("expected no events, got %d", len(stream.events()))
	}
}

func TestSendToolResultUsesAFreshContentStream(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	if err := s.SendToolResult(context.Background(), "tool-use-1", `{"answer":42}`); err != nil {
		t.Fatalf("expected tool result to succeed, got %v", err)
	}

	events := stream.events()
	tail := events[len(events)-3:]
	start, result, end := tail[0], tail[1], tail[2]
	if start.ContentStart == nil || start.ContentStart.Type != wire.ContentTypeTool {
		t.Fatalf("expected TOOL contentStart, got %+v", start)
	}
	if start.ContentStart.ToolResultInputConfiguration == nil ||
		start.ContentStart.ToolResultInputConfiguration.ToolUseID != "tool-use-1" {
		t.Fatalf("expected tool result configuration referencing the toolUse id, got %+v", start.ContentStart)
	}
	if result.ToolResult == nil || result.ToolResult.Content != `{"answer":42}` {
		t.Fatalf("expected toolResult payload, got %+v", result)
	}
	if result.ToolResult.ContentName != start.ContentStart.ContentName {
		t.Fatalf("expected toolResult under the opened content id")
	}
	if end.ContentEnd == nil || end.ContentEnd.ContentName != start.ContentStart.ContentName {
		t.Fatalf("expected contentEnd closing the tool stream, got %+v", end)
	}
	if start.ContentStart.ContentName == s.PromptID() {
		t.Fatalf("expected a fresh content id distinct from the prompt id")
	}
}

func TestIdentifiersAreStableAcrossTheSession(t *testing.T) {
	stream := &fakeTransport{}
	s := New(stream)
	prompt := s.PromptID()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	if err := s.OpenAudioInput(context.Background()); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	if err := s.CloseAudioInput(context.Background()); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}

	if s.PromptID() != prompt {
		t.Fatalf("expected prompt id to stay %q, got %q", prompt, s.PromptID())
	}
	for _, event := range stream.events() {
		switch {
		case event.PromptStart != nil && event.PromptStart.PromptName != prompt:
			t.Fatalf("expected promptStart under prompt id %q, got %q", prompt, event.PromptStart.PromptName)
		case event.ContentStart != nil && event.ContentStart.PromptName != prompt:
			t.Fatalf("expected contentStart under prompt id %q, got %q", prompt, event.ContentStart.PromptName)
		}
	}
}
