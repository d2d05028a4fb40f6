package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/koscakluka/sonic-core/core/audio"
	"github.com/koscakluka/sonic-core/internal/utils"
)

// Encode marshals an event into its wire envelope. All string fields are
// escaped by the JSON encoder, so identifiers and payloads can never break
// the envelope structure.
func Encode(event Event) ([]byte, error) {
	data, err := json.Marshal(Envelope{Event: event})
	if err != nil {
		return nil, fmt.Errorf("failed to encode event envelope: %w", err)
	}
	return data, nil
}

// Decode parses a wire frame into an event. Unknown event names and
// missing optional fields are tolerated; only a malformed frame is an
// error.
func Decode(data []byte) (Event, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Event{}, fmt.Errorf("failed to decode event envelope: %w", err)
	}
	return envelope.Event, nil
}

// NewSessionStart builds the session opening event.
func NewSessionStart(config InferenceConfiguration) Event {
	return Event{SessionStart: &SessionStart{InferenceConfiguration: config}}
}

// NewPromptStart builds the prompt opening event declaring text and audio
// output formats, the voice, and optionally the available tools.
func NewPromptStart(promptName, voiceID string, toolConfig *ToolConfiguration) Event {
	playback := audio.PlaybackEncodingInfo()
	return Event{PromptStart: &PromptStart{
		PromptName:              promptName,
		TextOutputConfiguration: TextConfiguration{MediaType: "text/plain"},
		AudioOutputConfiguration: AudioOutputConfiguration{
			MediaType:       audio.MediaTypeLPCM,
			SampleRateHertz: playback.SampleRate,
			SampleSizeBits:  playback.SampleSizeBits,
			ChannelCount:    playback.Channels,
			VoiceID:         voiceID,
			Encoding:        "base64",
			AudioType:       "SPEECH",
		},
		ToolConfiguration: toolConfig,
	}}
}

// NewTextContentStart builds a TEXT content stream opener.
func NewTextContentStart(promptName, contentName string, role Role) Event {
	return Event{ContentStart: &ContentStart{
		PromptName:             promptName,
		ContentName:            contentName,
		Type:                   ContentTypeText,
		Interactive:            true,
		Role:                   role,
		TextInputConfiguration: utils.Ptr(TextConfiguration{MediaType: "text/plain"}),
	}}
}

// NewAudioContentStart builds the AUDIO content stream opener for user
// microphone input.
func NewAudioContentStart(promptName, contentName string) Event {
	capture := audio.CaptureEncodingInfo()
	return Event{ContentStart: &ContentStart{
		PromptName:  promptName,
		ContentName: contentName,
		Type:        ContentTypeAudio,
		Interactive: true,
		Role:        RoleUser,
		AudioInputConfiguration: &AudioInputConfiguration{
			MediaType:       audio.MediaTypeLPCM,
			SampleRateHertz: capture.SampleRate,
			SampleSizeBits:  capture.SampleSizeBits,
			ChannelCount:    capture.Channels,
			AudioType:       "SPEECH",
			Encoding:        "base64",
		},
	}}
}

// NewToolContentStart builds the TOOL content stream opener answering the
// given toolUse request.
func NewToolContentStart(promptName, contentName, toolUseID string) Event {
	return Event{ContentStart: &ContentStart{
		PromptName:  promptName,
		ContentName: contentName,
		Type:        ContentTypeTool,
		Interactive: false,
		Role:        RoleTool,
		ToolResultInputConfiguration: &ToolResultInputConfiguration{
			ToolUseID:              toolUseID,
			Type:                   string(ContentTypeText),
			TextInputConfiguration: utils.Ptr(TextConfiguration{MediaType: "text/plain"}),
		},
	}}
}

// NewTextInput builds a text payload event for an open TEXT stream.
func NewTextInput(promptName, contentName, content string) Event {
	return Event{TextInput: &TextInput{
		PromptName:  promptName,
		ContentName: contentName,
		Content:     content,
	}}
}

// NewAudioInput builds an audio payload event for an open AUDIO stream,
// base64-encoding the raw PCM chunk.
func NewAudioInput(promptName, contentName string, pcm []byte) Event {
	return Event{AudioInput: &AudioInput{
		PromptName:  promptName,
		ContentName: contentName,
		Content:     base64.StdEncoding.EncodeToString(pcm),
	}}
}

// NewToolResult builds a tool result payload event for an open TOOL stream.
func NewToolResult(promptName, contentName, content string) Event {
	return Event{ToolResult: &ToolResult{
		PromptName:  promptName,
		ContentName: contentName,
		Content:     content,
	}}
}

// NewContentEnd builds a content stream closer.
func NewContentEnd(promptName, contentName string) Event {
	return Event{ContentEnd: &ContentEnd{PromptName: promptName, ContentName: contentName}}
}

// NewPromptEnd builds the prompt closer.
func NewPromptEnd(promptName string) Event {
	return Event{PromptEnd: &PromptEnd{PromptName: promptName}}
}

// NewSessionEnd builds the session closer.
func NewSessionEnd() Event {
	return Event{SessionEnd: &SessionEnd{}}
}
