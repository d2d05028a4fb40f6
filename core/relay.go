package orchestration

import (
	"sync"
	"time"
)

// audioRelay hands decoded model audio from the inbound dispatcher to the
// playback loop. Single producer, single consumer.
//
// The relay is bounded with a drop-oldest policy: a push never blocks, and
// when the queue is full the oldest chunk is discarded so playback skips
// ahead rather than drifting ever further behind real time. Dropped chunks
// are counted and logged.
type audioRelay struct {
	mu       sync.Mutex
	chunks   [][]byte
	capacity int
	dropped  uint64
	closed   bool

	updateSignal chan struct{}
}

func newAudioRelay(capacity int) *audioRelay {
	return &audioRelay{
		capacity:     capacity,
		updateSignal: make(chan struct{}, 1),
	}
}

// Push enqueues a chunk, discarding the oldest one when full. The producer
// relinquishes the chunk; it must not be reused afterwards.
func (r *audioRelay) Push(chunk []byte) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	r.chunks = append(r.chunks, chunk)
	if len(r.chunks) > r.capacity {
		r.chunks = r.chunks[1:]
		r.dropped++
		if r.dropped%64 == 1 {
			logger.Warn("audio relay full, dropping oldest chunk", "dropped", r.dropped)
		}
	}
	r.mu.Unlock()

	select {
	case r.updateSignal <- struct{}{}:
	default:
	}
}

// Pop dequeues the next chunk, waiting up to timeout for one to arrive.
// The second return value is false on timeout or once the relay is closed
// and drained.
func (r *audioRelay) Pop(timeout time.Duration) ([]byte, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		r.mu.Lock()
		if len(r.chunks) > 0 {
			chunk := r.chunks[0]
			r.chunks = r.chunks[1:]
			r.mu.Unlock()
			return chunk, true
		}
		closed := r.closed
		r.mu.Unlock()

		if closed {
			return nil, false
		}

		select {
		case <-r.updateSignal:
		case <-deadline.C:
			return nil, false
		}
	}
}

// Close wakes the consumer; remaining chunks can still be drained.
func (r *audioRelay) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	select {
	case r.updateSignal <- struct{}{}:
	default:
	}
}

func (r *audioRelay) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

// Dropped returns how many chunks were discarded under backpressure.
func (r *audioRelay) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
