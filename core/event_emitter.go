package orchestration

import events "github.com/koscakluka/sonic-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts OrchestrateOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.SessionStarted:
			if opts.onSessionStarted != nil {
				opts.onSessionStarted(typedEvent.PromptID)
			}
		case events.SessionEnded:
			if opts.onSessionEnded != nil {
				opts.onSessionEnded()
			}
		case events.TranscriptLine:
			if opts.onTranscript != nil {
				opts.onTranscript(typedEvent.Role, typedEvent.Text)
			}
		case events.AssistantAudioFrame:
			if opts.onAssistantAudio != nil {
				opts.onAssistantAudio(typedEvent.Audio)
			}
		case events.ToolCallStarted:
			if opts.onToolCallStarted != nil {
				opts.onToolCallStarted(typedEvent.ToolName)
			}
		case events.ToolCallCompleted:
			if opts.onToolCallCompleted != nil {
				opts.onToolCallCompleted(typedEvent.ToolName, typedEvent.Result)
			}
		case events.ToolCallFailed:
			if opts.onToolCallFailed != nil {
				opts.onToolCallFailed(typedEvent.ToolName, typedEvent.Err)
			}
		}
	}
}
