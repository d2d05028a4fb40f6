package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/koscakluka/sonic-core/core/events"
	"github.com/koscakluka/sonic-core/core/tools"
	"github.com/koscakluka/sonic-core/core/transport"
	"github.com/koscakluka/sonic-core/core/wire"
)

// displayMode decides whether assistant text of the current content stream
// is rendered. The speculative/final generation stages both carry the full
// utterance text; rendering is pinned to the speculative variant so each
// utterance appears exactly once.
type displayMode int

const (
	// displayModeUnset: no generation-stage hint was ever seen; assistant
	// text stays hidden until one arrives.
	displayModeUnset displayMode = iota
	displayModeShown
	displayModeSuppressed
)

// displayState is the explicit rendering state machine fed by contentStart
// events. Single writer: the dispatcher loop.
type displayState struct {
	role         wire.Role
	mode         displayMode
	sawStageHint bool
}

func (d *displayState) applyContentStart(start *wire.ContentStart) {
	d.role = start.Role

	if stage, ok := start.GenerationStageHint(); ok {
		d.sawStageHint = true
		if stage == wire.GenerationStageSpeculative {
			d.mode = displayModeShown
		} else {
			d.mode = displayModeSuppressed
		}
		return
	}

	// Once any hint has been seen, an unhinted stream is the other variant
	// of an already-rendered utterance; suppress it. Before the first hint
	// the previous mode carries over.
	if d.sawStageHint {
		d.mode = displayModeSuppressed
	}
}

func (d *displayState) shouldRender() bool {
	if d.role == wire.RoleUser {
		return true
	}
	return d.role == wire.RoleAssistant && d.mode == displayModeShown
}

// toolResponder returns a tool result to the remote side; wired to the
// session's SendToolResult.
type toolResponder func(ctx context.Context, toolUseID, content string) error

// dispatcher consumes the inbound half of the stream: it decodes events,
// drives the display state machine, forwards model audio into the relay,
// and executes tool requests. It is the relay's only producer and the
// display state's only writer.
type dispatcher struct {
	transport  transport.Transport
	relay      *audioRelay
	display    displayState
	transcript *transcriptLog
	tools      map[string]tools.Tool
	respond    toolResponder
	emit       eventEmitter
}

// run processes inbound events until the stream ends or the context is
// cancelled; both are normal exits. A single malformed event never
// terminates the loop.
func (d *dispatcher) run(ctx context.Context) error {
	for {
		frame, err := d.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to receive event: %w", err)
		}
		d.handle(ctx, frame)
	}
}

func (d *dispatcher) handle(ctx context.Context, frame []byte) {
	event, err := wire.Decode(frame)
	if err != nil {
		logger.Warn("skipping malformed inbound event", "error", err)
		return
	}

	switch {
	case event.ContentStart != nil:
		d.display.applyContentStart(event.ContentStart)

	case event.TextOutput != nil:
		if !d.display.shouldRender() {
			return
		}
		line := events.NewTranscriptLine(string(d.display.role), event.TextOutput.Content)
		d.transcript.append(TranscriptLine{Role: line.Role, Text: line.Text})
		d.emit(line)

	case event.AudioOutput != nil:
		pcm, err := event.AudioOutput.DecodeAudio()
		if err != nil {
			logger.Warn("skipping undecodable audio payload", "error", err)
			return
		}
		d.relay.Push(pcm)
		d.emit(events.NewAssistantAudioFrame(pcm))

	case event.ToolUse != nil:
		toolUse := *event.ToolUse
		go d.runTool(ctx, toolUse)

	case event.ContentEnd != nil, event.IsZero():
		// Content boundaries carry no display information beyond what the
		// next contentStart resets; unknown events are ignored by contract.
	}
}

func (d *dispatcher) runTool(ctx context.Context, toolUse wire.ToolUse) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("tool execution panicked", "tool", toolUse.ToolName, "panic", recovered)
		}
	}()

	d.emit(events.NewToolCallStarted(toolUse.ToolUseID, toolUse.ToolName))

	tool, ok := d.tools[toolUse.ToolName]
	if !ok {
		d.failTool(ctx, toolUse, fmt.Errorf("unknown tool %q", toolUse.ToolName))
		return
	}

	result, err := tool.Execute(toolUse.Content)
	if err != nil {
		d.failTool(ctx, toolUse, fmt.Errorf("failed to execute tool %q: %w", toolUse.ToolName, err))
		return
	}

	if err := d.respond(ctx, toolUse.ToolUseID, result); err != nil {
		logger.Warn("failed to send tool result", "tool", toolUse.ToolName, "error", err)
		d.emit(events.NewToolCallFailed(toolUse.ToolUseID, toolUse.ToolName, err))
		return
	}
	d.emit(events.NewToolCallCompleted(toolUse.ToolUseID, toolUse.ToolName, result))
}

// failTool reports the failure both locally and to the model, which is
// still waiting on the toolUse it issued.
func (d *dispatcher) failTool(ctx context.Context, toolUse wire.ToolUse, toolErr error) {
	logger.Warn("tool call failed", "tool", toolUse.ToolName, "error", toolErr)
	d.emit(events.NewToolCallFailed(toolUse.ToolUseID, toolUse.ToolName, toolErr))

	payload, err := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: toolErr.Error()})
	if err != nil {
		return
	}
	if err := d.respond(ctx, toolUse.ToolUseID, string(payload)); err != nil {
		logger.Warn("failed to send tool error result", "tool", toolUse.ToolName, "error", err)
	}
}
