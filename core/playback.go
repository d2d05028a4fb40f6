package orchestration

import (
	"context"
	"fmt"
	"time"
)

// playbackPoll is how long the playback loop waits on the relay before
// re-checking for cancellation. Purely a responsiveness bound; it carries
// no protocol meaning.
const playbackPoll = 500 * time.Millisecond

// PlaybackDevice consumes chunks of raw PCM for speaker output.
type PlaybackDevice interface {
	WriteChunk(chunk []byte) error
	Close() error
}

// runPlayback drains the audio relay into the playback device until
// cancelled.
func (o *Orchestrator) runPlayback(ctx context.Context) error {
	defer func() {
		if err := o.playback.Close(); err != nil {
			logger.Warn("failed to release playback device", "error", err)
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		chunk, ok := o.relay.Pop(playbackPoll)
		if !ok {
			continue
		}

		if err := o.playback.WriteChunk(chunk); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to write playback chunk: %w", err)
		}
	}
}
