// Package websocket provides a gorilla/websocket implementation of the
// event stream transport.
package websocket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/sonic-core/core/transport"
)

const authTokenEnv = "AWS_BEARER_TOKEN_BEDROCK"

var _ transport.Transport = (*Client)(nil)

// Client is a websocket-backed bidirectional event stream. Outbound frames
// are written in call order under a single write lock; inbound frames are
// read by a dedicated goroutine and handed out through Receive in arrival
// order.
type Client struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	frames    chan []byte
	closeOnce sync.Once
}

type Option func(*options)

type options struct {
	endpoint string
	modelID  string
	region   string
}

// WithEndpoint overrides the derived stream endpoint entirely.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithModelID selects the model the stream is opened against.
func WithModelID(modelID string) Option {
	return func(o *options) { o.modelID = modelID }
}

// WithRegion selects the service region the endpoint is derived from.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// Dial opens the bidirectional stream. The bearer token is resolved from
// the environment, never passed through code.
func Dial(ctx context.Context, opts ...Option) (*Client, error) {
	options := options{
		modelID: "amazon.nova-sonic-v1:0",
		region:  "us-east-1",
	}
	for _, opt := range opts {
		opt(&options)
	}

	token, ok := os.LookupEnv(authTokenEnv)
	if !ok {
		return nil, fmt.Errorf("bearer token not found in %s", authTokenEnv)
	}

	endpoint := options.endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf(
			"wss://bedrock-runtime.%s.amazonaws.com/model/%s/invoke-with-bidirectional-stream",
			options.region, url.PathEscape(options.modelID),
		)
	}
	streamURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid stream endpoint: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, streamURL.String(),
		http.Header{"Authorization": {"Bearer " + token}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to stream endpoint: %w", err)
	}

	client := &Client{
		conn:   conn,
		frames: make(chan []byte, 32),
	}
	go client.readFrames()

	return client, nil
}

func (c *Client) readFrames() {
	defer close(c.frames)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("stream read failed", "error", err)
			}
			return
		}
		c.frames <- msg
	}
}

// Send writes one encoded event frame. Events from a single caller are
// delivered in call order.
func (c *Client) Send(ctx context.Context, event []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
		return fmt.Errorf("failed to write event to stream: %w", err)
	}
	return nil
}

// Receive returns the next inbound frame, transport.ErrClosed once the
// stream has ended, or the context error on cancellation.
func (c *Client) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame, ok := <-c.frames:
		if !ok {
			return nil, transport.ErrClosed
		}
		return frame, nil
	}
}

// Close sends a close frame and tears the connection down. Safe to call
// more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.connMu.Lock()
		defer c.connMu.Unlock()

		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = c.conn.Close()
	})
	return err
}
