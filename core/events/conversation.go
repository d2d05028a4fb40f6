package events

const (
	// KindSessionStarted identifies completion of the session opening sequence.
	KindSessionStarted Kind = "session.started"
	// KindSessionEnded identifies completion of the session closing sequence.
	KindSessionEnded Kind = "session.ended"
	// KindTranscriptLine identifies a rendered transcript line.
	KindTranscriptLine Kind = "transcript.line"
	// KindAssistantAudioFrame identifies a decoded chunk of model speech.
	KindAssistantAudioFrame Kind = "assistant_audio.frame"
)

// SessionStarted marks that the session accepts audio.
type SessionStarted struct {
	Base
	PromptID string
}

// NewSessionStarted creates a session started event.
func NewSessionStarted(promptID string) SessionStarted {
	return SessionStarted{Base: NewBase(KindSessionStarted), PromptID: promptID}
}

// SessionEnded marks that the closing sequence completed.
type SessionEnded struct{ Base }

// NewSessionEnded creates a session ended event.
func NewSessionEnded() SessionEnded {
	return SessionEnded{Base: NewBase(KindSessionEnded)}
}

// TranscriptLine carries one rendered transcript line. Role is the wire
// role string of the content stream the line belongs to.
type TranscriptLine struct {
	Base
	Role string
	Text string
}

// NewTranscriptLine creates a transcript line event.
func NewTranscriptLine(role, text string) TranscriptLine {
	return TranscriptLine{Base: NewBase(KindTranscriptLine), Role: role, Text: text}
}

// AssistantAudioFrame carries a decoded PCM chunk of model speech.
type AssistantAudioFrame struct {
	Base
	Audio []byte
}

// NewAssistantAudioFrame creates an assistant audio frame event.
func NewAssistantAudioFrame(audio []byte) AssistantAudioFrame {
	return AssistantAudioFrame{Base: NewBase(KindAssistantAudioFrame), Audio: audio}
}
