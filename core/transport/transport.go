// Package transport defines the bidirectional event stream contract the
// protocol engine is written against.
//
// The engine only ever asks a transport to send an opaque encoded event,
// await the next inbound event, or close. Framing, authentication, and
// reconnection live entirely behind this interface.
package transport

import (
	"context"
	"errors"
)

// ErrClosed reports that the stream has ended. Receiving it is the normal
// way a session learns the remote side is done; it is not a failure.
var ErrClosed = errors.New("transport closed")

// Transport is a bidirectional ordered stream of encoded events.
//
// Send must deliver events in call order. Receive returns inbound frames
// strictly in arrival order and ErrClosed once the stream has ended.
// Implementations must allow Send and Receive to be called from different
// goroutines, one goroutine per direction.
type Transport interface {
	Send(ctx context.Context, event []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}
