package session

import "github.com/koscakluka/sonic-core/core/wire"

const defaultSystemPrompt = "You are a friendly assistant. The user and you will engage in a spoken " +
	"dialog exchanging the transcripts of a natural real-time conversation. Keep your responses short, " +
	"generally two or three sentences for chatty scenarios."

// Options configure the session before Start fixes them for its lifetime.
type Options struct {
	Voice             string
	SystemPrompt      string
	Inference         wire.InferenceConfiguration
	ToolConfiguration *wire.ToolConfiguration
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Voice:        "matthew",
		SystemPrompt: defaultSystemPrompt,
		Inference: wire.InferenceConfiguration{
			MaxTokens:   1024,
			TopP:        0.9,
			Temperature: 0.7,
		},
	}
}

// WithVoice selects the voice the model answers with.
func WithVoice(voice string) Option {
	return func(o *Options) { o.Voice = voice }
}

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) { o.SystemPrompt = prompt }
}

// WithInferenceConfiguration replaces the default generation bounds.
func WithInferenceConfiguration(config wire.InferenceConfiguration) Option {
	return func(o *Options) { o.Inference = config }
}

// WithToolConfiguration declares the tools available for the prompt.
func WithToolConfiguration(config *wire.ToolConfiguration) Option {
	return func(o *Options) { o.ToolConfiguration = config }
}
