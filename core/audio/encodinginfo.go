package audio

import "errors"

// MediaTypeLPCM is the media type for raw linear PCM audio, the only
// encoding spoken on both sides of the stream.
const MediaTypeLPCM = "audio/lpcm"

const (
	// CaptureSampleRate is the microphone sample rate expected by the model.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the sample rate of audio produced by the model.
	PlaybackSampleRate = 24000

	// DefaultChunkFrames is the number of frames read from the capture
	// device per chunk.
	DefaultChunkFrames = 1024
)

// ErrOverflow reports that a capture device dropped frames because its
// internal buffer filled up before the reader got to them. Callers should
// treat it as transient and keep reading.
var ErrOverflow = errors.New("capture buffer overflow")

// EncodingInfo describes a raw PCM stream.
type EncodingInfo struct {
	SampleRate     int
	SampleSizeBits int
	Channels       int
}

// CaptureEncodingInfo returns the encoding used for microphone input.
func CaptureEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureSampleRate, SampleSizeBits: 16, Channels: 1}
}

// PlaybackEncodingInfo returns the encoding used for model audio output.
func PlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, SampleSizeBits: 16, Channels: 1}
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.SampleSizeBits == 0 || e.Channels == 0
}

// BytesPerFrame returns the size of a single frame across all channels.
func (e EncodingInfo) BytesPerFrame() int {
	return e.SampleSizeBits / 8 * e.Channels
}

// ChunkBytes returns the byte size of a chunk of the given frame count.
func (e EncodingInfo) ChunkBytes(frames int) int {
	return frames * e.BytesPerFrame()
}
