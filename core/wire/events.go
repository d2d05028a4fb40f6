// Package wire implements the JSON event envelope protocol spoken over the
// bidirectional stream.
//
// Every frame in either direction is a single envelope of the shape
//
//	{ "event": { "<eventName>": { ...fields... } } }
//
// Outbound event names: sessionStart, promptStart, contentStart, textInput,
// audioInput, toolResult, contentEnd, promptEnd, sessionEnd. Inbound event
// names: contentStart, textOutput, audioOutput, toolUse, contentEnd.
// Unknown inbound event names decode to an empty Event and are skipped by
// the caller.
package wire

import (
	"encoding/base64"
	"encoding/json"
)

// Role identifies the originator of a content stream.
type Role string

const (
	RoleSystem    Role = "SYSTEM"
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
	RoleTool      Role = "TOOL"
)

// ContentType identifies the payload kind of a content stream.
type ContentType string

const (
	ContentTypeText  ContentType = "TEXT"
	ContentTypeAudio ContentType = "AUDIO"
	ContentTypeTool  ContentType = "TOOL"
)

// GenerationStage distinguishes a provisional assistant output from the
// confirmed final output of the same utterance.
type GenerationStage string

const (
	GenerationStageSpeculative GenerationStage = "SPECULATIVE"
	GenerationStageFinal       GenerationStage = "FINAL"
)

// Envelope is the top-level wire frame.
type Envelope struct {
	Event Event `json:"event"`
}

// Event is a tagged union; exactly one field is non-nil for a well-formed
// frame. Decoding a frame with an unrecognized event name yields the zero
// Event.
type Event struct {
	SessionStart *SessionStart `json:"sessionStart,omitempty"`
	PromptStart  *PromptStart  `json:"promptStart,omitempty"`
	ContentStart *ContentStart `json:"contentStart,omitempty"`
	TextInput    *TextInput    `json:"textInput,omitempty"`
	AudioInput   *AudioInput   `json:"audioInput,omitempty"`
	ToolResult   *ToolResult   `json:"toolResult,omitempty"`
	ContentEnd   *ContentEnd   `json:"contentEnd,omitempty"`
	PromptEnd    *PromptEnd    `json:"promptEnd,omitempty"`
	SessionEnd   *SessionEnd   `json:"sessionEnd,omitempty"`

	TextOutput  *TextOutput  `json:"textOutput,omitempty"`
	AudioOutput *AudioOutput `json:"audioOutput,omitempty"`
	ToolUse     *ToolUse     `json:"toolUse,omitempty"`
}

// IsZero reports whether no known event name was present in the frame.
func (e Event) IsZero() bool {
	return e == Event{}
}

// InferenceConfiguration bounds model generation for the session.
type InferenceConfiguration struct {
	MaxTokens   int     `json:"maxTokens"`
	TopP        float64 `json:"topP"`
	Temperature float64 `json:"temperature"`
}

// SessionStart opens the session and fixes its inference configuration.
type SessionStart struct {
	InferenceConfiguration InferenceConfiguration `json:"inferenceConfiguration"`
}

// TextConfiguration declares the media type of a text channel.
type TextConfiguration struct {
	MediaType string `json:"mediaType"`
}

// AudioOutputConfiguration declares the format and voice of model audio.
type AudioOutputConfiguration struct {
	MediaType       string `json:"mediaType"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	SampleSizeBits  int    `json:"sampleSizeBits"`
	ChannelCount    int    `json:"channelCount"`
	VoiceID         string `json:"voiceId"`
	Encoding        string `json:"encoding"`
	AudioType       string `json:"audioType"`
}

// AudioInputConfiguration declares the format of user audio.
type AudioInputConfiguration struct {
	MediaType       string `json:"mediaType"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	SampleSizeBits  int    `json:"sampleSizeBits"`
	ChannelCount    int    `json:"channelCount"`
	AudioType       string `json:"audioType"`
	Encoding        string `json:"encoding"`
}

// ToolSpec declares a single callable tool to the model.
type ToolSpec struct {
	ToolSpec ToolSpecInner `json:"toolSpec"`
}

type ToolSpecInner struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema ToolInputSchema `json:"inputSchema"`
}

// ToolInputSchema carries the tool's JSON schema as a serialized string,
// the shape the service expects.
type ToolInputSchema struct {
	JSON string `json:"json"`
}

// ToolConfiguration lists the tools available for the prompt.
type ToolConfiguration struct {
	Tools []ToolSpec `json:"tools"`
}

// PromptStart opens the prompt and declares its output channels.
type PromptStart struct {
	PromptName               string                   `json:"promptName"`
	TextOutputConfiguration  TextConfiguration        `json:"textOutputConfiguration"`
	AudioOutputConfiguration AudioOutputConfiguration `json:"audioOutputConfiguration"`
	ToolConfiguration        *ToolConfiguration       `json:"toolConfiguration,omitempty"`
}

// ToolResultInputConfiguration ties a TOOL content stream back to the
// toolUse request it answers.
type ToolResultInputConfiguration struct {
	ToolUseID              string             `json:"toolUseId"`
	Type                   string             `json:"type"`
	TextInputConfiguration *TextConfiguration `json:"textInputConfiguration,omitempty"`
}

// ContentStart opens a content stream within the prompt. Outbound it
// carries exactly one of the input configurations matching Type; inbound
// it may additionally carry a role and serialized additional model fields.
type ContentStart struct {
	PromptName  string      `json:"promptName"`
	ContentName string      `json:"contentName"`
	Type        ContentType `json:"type"`
	Interactive bool        `json:"interactive"`
	Role        Role        `json:"role,omitempty"`

	TextInputConfiguration       *TextConfiguration            `json:"textInputConfiguration,omitempty"`
	AudioInputConfiguration      *AudioInputConfiguration      `json:"audioInputConfiguration,omitempty"`
	ToolResultInputConfiguration *ToolResultInputConfiguration `json:"toolResultInputConfiguration,omitempty"`

	// AdditionalModelFields is a JSON document serialized into a string
	// by the service; generationStage hints arrive through it.
	AdditionalModelFields string `json:"additionalModelFields,omitempty"`
}

// GenerationStageHint extracts the generation stage from the additional
// model fields. The second return value reports whether a hint was
// present; a malformed or absent document counts as no hint.
func (c ContentStart) GenerationStageHint() (GenerationStage, bool) {
	if c.AdditionalModelFields == "" {
		return "", false
	}

	var fields struct {
		GenerationStage GenerationStage `json:"generationStage"`
	}
	if err := json.Unmarshal([]byte(c.AdditionalModelFields), &fields); err != nil {
		return "", false
	}
	if fields.GenerationStage == "" {
		return "", false
	}
	return fields.GenerationStage, true
}

// TextInput carries a text payload on an open TEXT content stream.
type TextInput struct {
	PromptName  string `json:"promptName"`
	ContentName string `json:"contentName"`
	Content     string `json:"content"`
}

// AudioInput carries a base64 PCM payload on an open AUDIO content stream.
type AudioInput struct {
	PromptName  string `json:"promptName"`
	ContentName string `json:"contentName"`
	Content     string `json:"content"`
}

// ToolResult carries the serialized result of a tool execution on an open
// TOOL content stream.
type ToolResult struct {
	PromptName  string `json:"promptName"`
	ContentName string `json:"contentName"`
	Content     string `json:"content"`
}

// ContentEnd closes a content stream. The stream must not be reused.
type ContentEnd struct {
	PromptName  string `json:"promptName"`
	ContentName string `json:"contentName"`
}

// PromptEnd closes the prompt; every content stream must already be closed.
type PromptEnd struct {
	PromptName string `json:"promptName"`
}

// SessionEnd closes the session; the prompt must already be closed.
type SessionEnd struct{}

// TextOutput carries transcript text produced by the model.
type TextOutput struct {
	PromptName  string `json:"promptName,omitempty"`
	ContentName string `json:"contentName,omitempty"`
	Content     string `json:"content"`
}

// AudioOutput carries a base64 PCM payload produced by the model.
type AudioOutput struct {
	PromptName  string `json:"promptName,omitempty"`
	ContentName string `json:"contentName,omitempty"`
	Content     string `json:"content"`
}

// DecodeAudio returns the raw PCM bytes of the payload.
func (a AudioOutput) DecodeAudio() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Content)
}

// ToolUse asks the client to execute a tool and return its result.
type ToolUse struct {
	PromptName  string `json:"promptName,omitempty"`
	ContentName string `json:"contentName,omitempty"`
	ToolUseID   string `json:"toolUseId"`
	ToolName    string `json:"toolName"`
	Content     string `json:"content"`
}
