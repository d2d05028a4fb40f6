// Package miniaudio provides malgo-backed capture and playback devices.
//
// One Client owns the malgo context; capture and playback devices are
// created from it and closed independently, so the capture loop can
// release the microphone while playback keeps draining.
package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext

	closeOnce sync.Once
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	return &Client{audioContext: audioCtx}, nil
}

// Close releases the malgo context. Devices created from this client must
// be closed first.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
	})
	return nil
}
