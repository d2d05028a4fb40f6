package orchestration

import (
	"github.com/koscakluka/sonic-core/core/session"
	"github.com/koscakluka/sonic-core/core/tools"
	"github.com/koscakluka/sonic-core/core/wire"
)

const defaultRelayCapacity = 256

type OrchestratorOption func(*Orchestrator)

// WithCaptureDevice wires the microphone collaborator. Without one the
// conversation is listen-only.
func WithCaptureDevice(device CaptureDevice) OrchestratorOption {
	return func(o *Orchestrator) { o.capture = device }
}

// WithPlaybackDevice wires the speaker collaborator. Without one model
// audio is dropped by the relay once it fills.
func WithPlaybackDevice(device PlaybackDevice) OrchestratorOption {
	return func(o *Orchestrator) { o.playback = device }
}

// WithRelayCapacity bounds the playback handoff queue; beyond it the
// oldest chunks are dropped.
func WithRelayCapacity(capacity int) OrchestratorOption {
	return func(o *Orchestrator) {
		if capacity > 0 {
			o.relayCapacity = capacity
		}
	}
}

// WithVoice selects the voice the model answers with.
func WithVoice(voice string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.sessionOpts = append(o.sessionOpts, session.WithVoice(voice))
	}
}

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.sessionOpts = append(o.sessionOpts, session.WithSystemPrompt(prompt))
	}
}

// WithInferenceConfiguration replaces the default generation bounds.
func WithInferenceConfiguration(config wire.InferenceConfiguration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.sessionOpts = append(o.sessionOpts, session.WithInferenceConfiguration(config))
	}
}

// WithTool registers a tool the model may invoke mid-conversation.
func WithTool(tool tools.Tool) OrchestratorOption {
	return func(o *Orchestrator) { o.toolset = append(o.toolset, tool) }
}

// OrchestrateOptions carry the per-run callbacks.
type OrchestrateOptions struct {
	onSessionStarted    func(promptID string)
	onSessionEnded      func()
	onTranscript        func(role, text string)
	onAssistantAudio    func(audio []byte)
	onToolCallStarted   func(name string)
	onToolCallCompleted func(name, result string)
	onToolCallFailed    func(name string, err error)
}

type OrchestrateOption func(*OrchestrateOptions)

// OnSessionStarted is called once the opening sequence completed.
func OnSessionStarted(callback func(promptID string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onSessionStarted = callback }
}

// OnSessionEnded is called once the closing sequence completed.
func OnSessionEnded(callback func()) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onSessionEnded = callback }
}

// OnTranscript is called for every rendered transcript line.
func OnTranscript(callback func(role, text string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onTranscript = callback }
}

// OnAssistantAudio is called for every decoded chunk of model speech, in
// arrival order.
func OnAssistantAudio(callback func(audio []byte)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onAssistantAudio = callback }
}

// OnToolCallStarted is called when a tool execution starts.
func OnToolCallStarted(callback func(name string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onToolCallStarted = callback }
}

// OnToolCallCompleted is called when a tool execution completes.
func OnToolCallCompleted(callback func(name, result string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onToolCallCompleted = callback }
}

// OnToolCallFailed is called when a tool execution fails.
func OnToolCallFailed(callback func(name string, err error)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onToolCallFailed = callback }
}
