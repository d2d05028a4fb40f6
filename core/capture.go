package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/koscakluka/sonic-core/core/audio"
)

// captureYield bounds CPU usage of the capture loop and lets the other
// loops interleave fairly between device reads.
const captureYield = 10 * time.Millisecond

// CaptureDevice produces fixed-size chunks of raw PCM from a microphone.
//
// ReadChunk blocks until a chunk is available or ctx is done. A device
// that dropped frames reports audio.ErrOverflow; the loop skips and keeps
// reading.
type CaptureDevice interface {
	ReadChunk(ctx context.Context) ([]byte, error)
	Close() error
}

// runCapture opens the audio input stream, feeds device chunks into the
// session, and on shutdown releases the device before closing the stream,
// so the remote side sees a clean content boundary after the last chunk.
func (o *Orchestrator) runCapture(ctx context.Context) error {
	if err := o.session.OpenAudioInput(ctx); err != nil {
		return fmt.Errorf("failed to open audio input: %w", err)
	}

	defer func() {
		if err := o.capture.Close(); err != nil {
			logger.Warn("failed to release capture device", "error", err)
		}
		// Shutdown cancels ctx, but the content boundary must still go out.
		if err := o.session.CloseAudioInput(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to close audio input", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		chunk, err := o.capture.ReadChunk(ctx)
		if err != nil {
			if errors.Is(err, audio.ErrOverflow) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read capture chunk: %w", err)
		}

		if err := o.session.SendAudio(ctx, chunk); err != nil {
			return fmt.Errorf("failed to send audio chunk: %w", err)
		}

		time.Sleep(captureYield)
	}
}
