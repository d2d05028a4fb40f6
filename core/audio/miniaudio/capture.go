package miniaudio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/sonic-core/core/audio"
)

// Capture is a 16 kHz mono microphone device. The malgo data callback
// assembles fixed-size chunks and hands them to ReadChunk through a
// bounded channel; when the reader falls behind, chunks are dropped and
// the next read reports audio.ErrOverflow.
type Capture struct {
	device *malgo.Device
	config malgo.DeviceConfig

	chunkBytes int
	pending    []byte
	chunks     chan []byte
	overflowed atomic.Bool

	mu        sync.Mutex
	closeOnce sync.Once
}

// NewCapture initializes and starts the capture device, producing chunks
// of chunkFrames frames each.
func (c *Client) NewCapture(chunkFrames int) (*Capture, error) {
	if chunkFrames <= 0 {
		chunkFrames = audio.DefaultChunkFrames
	}
	encoding := audio.CaptureEncodingInfo()

	capture := &Capture{
		chunkBytes: encoding.ChunkBytes(chunkFrames),
		chunks:     make(chan []byte, 8),
	}

	capture.config = malgo.DefaultDeviceConfig(malgo.Capture)
	capture.config.SampleRate = uint32(encoding.SampleRate)
	capture.config.Capture.Format = malgo.FormatS16
	capture.config.Capture.Channels = uint32(encoding.Channels)
	capture.config.Alsa.NoMMap = 1
	capture.config.PerformanceProfile = malgo.LowLatency
	capture.config.PeriodSizeInFrames = 480
	capture.config.Periods = 3

	bytesPerFrame := encoding.BytesPerFrame()
	device, err := malgo.InitDevice(c.audioContext.Context, capture.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			capture.accumulate(pInput[:n])
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	capture.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}

	return capture, nil
}

// accumulate runs on the malgo callback thread; it must never block.
func (c *Capture) accumulate(input []byte) {
	c.mu.Lock()
	c.pending = append(c.pending, input...)
	for len(c.pending) >= c.chunkBytes {
		chunk := make([]byte, c.chunkBytes)
		copy(chunk, c.pending[:c.chunkBytes])
		c.pending = c.pending[c.chunkBytes:]

		select {
		case c.chunks <- chunk:
		default:
			c.overflowed.Store(true)
		}
	}
	c.mu.Unlock()
}

// ReadChunk returns the next fixed-size chunk of captured PCM. It reports
// audio.ErrOverflow once per stretch of dropped audio.
func (c *Capture) ReadChunk(ctx context.Context) ([]byte, error) {
	if c.overflowed.Swap(false) {
		return nil, audio.ErrOverflow
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case chunk, ok := <-c.chunks:
		if !ok {
			return nil, fmt.Errorf("capture device closed")
		}
		return chunk, nil
	}
}

// Close stops and releases the microphone.
func (c *Capture) Close() error {
	c.closeOnce.Do(func() {
		if c.device != nil {
			_ = c.device.Stop()
			c.device.Uninit()
			c.device = nil
		}
		close(c.chunks)
	})
	return nil
}
