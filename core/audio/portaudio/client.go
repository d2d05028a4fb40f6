// Package portaudio provides portaudio-backed capture and playback
// devices as an alternative to the miniaudio backend.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/sonic-core/core/audio"
)

var initOnce sync.Once

func initialize() error {
	var err error
	initOnce.Do(func() { err = portaudio.Initialize() })
	return err
}

// Capture is a blocking 16 kHz mono microphone stream reading fixed-size
// chunks.
type Capture struct {
	stream *portaudio.Stream
	in     []int16

	closeOnce sync.Once
}

func NewCapture(chunkFrames int) (*Capture, error) {
	if chunkFrames <= 0 {
		chunkFrames = audio.DefaultChunkFrames
	}
	if err := initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, chunkFrames)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(audio.CaptureSampleRate), chunkFrames, in)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start capture stream: %w", err)
	}

	return &Capture{stream: stream, in: in}, nil
}

// ReadChunk blocks on the device for one chunk. Device overflow maps to
// audio.ErrOverflow so the caller skips rather than aborts.
func (c *Capture) ReadChunk(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.stream.Read(); err != nil {
		if err == portaudio.InputOverflowed {
			return nil, audio.ErrOverflow
		}
		return nil, fmt.Errorf("failed to read capture stream: %w", err)
	}

	buffer := bytes.Buffer{}
	if err := binary.Write(&buffer, binary.LittleEndian, c.in); err != nil {
		return nil, fmt.Errorf("failed to serialize capture chunk: %w", err)
	}
	return buffer.Bytes(), nil
}

func (c *Capture) Close() error {
	var err error
	c.closeOnce.Do(func() {
		_ = c.stream.Stop()
		err = c.stream.Close()
	})
	return err
}

// Playback is a blocking 24 kHz mono speaker stream. WriteChunk slices the
// chunk into device-sized buffers; a remainder is kept until the next
// chunk.
type Playback struct {
	stream      *portaudio.Stream
	out         []int16
	bufferBytes int

	leftoverAudio []byte

	mu        sync.Mutex
	closeOnce sync.Once
}

func NewPlayback(bufferFrames int) (*Playback, error) {
	if bufferFrames <= 0 {
		bufferFrames = audio.DefaultChunkFrames
	}
	if err := initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	out := make([]int16, bufferFrames)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(audio.PlaybackSampleRate), bufferFrames, out)
	if err != nil {
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start playback stream: %w", err)
	}

	return &Playback{
		stream:      stream,
		out:         out,
		bufferBytes: bufferFrames * audio.PlaybackEncodingInfo().BytesPerFrame(),
	}, nil
}

func (p *Playback) WriteChunk(chunk []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := append(p.leftoverAudio, chunk...)
	for len(pending) >= p.bufferBytes {
		if err := binary.Read(bytes.NewReader(pending[:p.bufferBytes]), binary.LittleEndian, p.out); err != nil {
			return fmt.Errorf("failed to deserialize playback chunk: %w", err)
		}
		pending = pending[p.bufferBytes:]

		if err := p.stream.Write(); err != nil && err != portaudio.OutputUnderflowed {
			return fmt.Errorf("failed to write playback stream: %w", err)
		}
	}
	p.leftoverAudio = pending
	return nil
}

func (p *Playback) Close() error {
	var err error
	p.closeOnce.Do(func() {
		_ = p.stream.Stop()
		err = p.stream.Close()
	})
	return err
}
