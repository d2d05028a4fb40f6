package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/sonic-core/core/audio"
)

// Playback is a 24 kHz mono speaker device. WriteChunk appends to an
// internal buffer that the malgo callback drains at device pace; gaps are
// filled with silence by the zeroed output buffer.
type Playback struct {
	device *malgo.Device
	config malgo.DeviceConfig

	leftoverAudio []byte

	audioMu   sync.Mutex
	closeOnce sync.Once
}

// NewPlayback initializes and starts the playback device.
func (c *Client) NewPlayback() (*Playback, error) {
	encoding := audio.PlaybackEncodingInfo()

	playback := &Playback{}
	playback.config = malgo.DefaultDeviceConfig(malgo.Playback)
	playback.config.SampleRate = uint32(encoding.SampleRate)
	playback.config.Playback.Format = malgo.FormatS16
	playback.config.Playback.Channels = uint32(encoding.Channels)
	playback.config.Alsa.NoMMap = 1
	playback.config.PeriodSizeInFrames = uint32(encoding.SampleRate / 10) // ~100ms of audio
	playback.config.Periods = 4

	device, err := malgo.InitDevice(
		c.audioContext.Context,
		playback.config,
		malgo.DeviceCallbacks{Data: playback.processAudio(encoding.BytesPerFrame())},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	playback.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return playback, nil
}

// WriteChunk queues a chunk of PCM for playback. It never blocks on the
// device; pacing happens in the device callback.
func (p *Playback) WriteChunk(chunk []byte) error {
	if p.device == nil {
		return fmt.Errorf("device not initialized")
	}

	p.audioMu.Lock()
	defer p.audioMu.Unlock()
	p.leftoverAudio = append(p.leftoverAudio, chunk...)
	return nil
}

// Close stops and releases the speaker, discarding unplayed audio.
func (p *Playback) Close() error {
	p.closeOnce.Do(func() {
		if p.device != nil {
			_ = p.device.Stop()
			p.device.Uninit()
			p.device = nil
		}

		p.audioMu.Lock()
		p.leftoverAudio = nil
		p.audioMu.Unlock()
	})
	return nil
}

func (p *Playback) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		p.audioMu.Lock()
		defer p.audioMu.Unlock()

		if len(p.leftoverAudio) == 0 {
			return
		}

		if len(p.leftoverAudio) < need {
			_ = copy(pOutput, p.leftoverAudio)
			p.leftoverAudio = nil
			return
		}

		_ = copy(pOutput, p.leftoverAudio[:need])
		p.leftoverAudio = p.leftoverAudio[need:]
	}
}
