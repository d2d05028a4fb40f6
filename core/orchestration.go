// Package orchestration drives one full-duplex voice conversation: it
// starts the session, runs the capture, playback, and dispatcher loops
// concurrently, and sequences the graceful shutdown.
package orchestration

import (
	"context"
	"sync"

	"github.com/koscakluka/sonic-core/core/events"
	"github.com/koscakluka/sonic-core/core/session"
	"github.com/koscakluka/sonic-core/core/tools"
	"github.com/koscakluka/sonic-core/core/transport"
	"go.opentelemetry.io/otel/codes"
)

// Orchestrator owns one conversation over one transport. Each loop it
// starts has exactly one writer per mutable field, so the loops exchange
// data only through the session's operations and the audio relay.
type Orchestrator struct {
	transport transport.Transport
	session   *session.Session

	capture  CaptureDevice
	playback PlaybackDevice

	relay         *audioRelay
	relayCapacity int
	transcript    transcriptLog

	toolset     []tools.Tool
	sessionOpts []session.Option

	emit eventEmitter

	stopOnce sync.Once
	stop     chan struct{}
}

// NewOrchestrator creates an orchestrator for a single conversation over
// the given transport. One orchestrator drives exactly one conversation;
// create a new one per session.
func NewOrchestrator(t transport.Transport, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		transport:     t,
		relayCapacity: defaultRelayCapacity,
		emit:          noopEventEmitter,
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}

	if config := tools.Configuration(o.toolset); config != nil {
		o.sessionOpts = append(o.sessionOpts, session.WithToolConfiguration(config))
	}
	o.session = session.New(t, o.sessionOpts...)
	o.relay = newAudioRelay(o.relayCapacity)

	return o
}

// Session exposes the session for direct protocol operations; most callers
// only need Run and Stop.
func (o *Orchestrator) Session() *session.Session { return o.session }

// Transcript returns a deep-copied snapshot of the rendered transcript.
func (o *Orchestrator) Transcript() []TranscriptLine { return o.transcript.Snapshot() }

// Stop signals the end of the conversation. Safe to call from any
// goroutine, any number of times.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.stop) })
}

// Run starts the session and drives the conversation until Stop is called,
// the context is cancelled, the remote side closes the stream, or a loop
// fails. It then sequences the shutdown: deactivate the session, cancel
// the loops, wait for them (capture closes the audio stream on its way
// out), and finally end the session. Even after a loop failure the session
// end sequence is still attempted so no half-open remote session leaks.
//
// Contract: call Run at most once per orchestrator instance.
func (o *Orchestrator) Run(ctx context.Context, opts ...OrchestrateOption) error {
	options := OrchestrateOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	o.emit = newCallbackEventEmitter(options)

	ctx, span := tracer.Start(ctx, "conversation")
	defer span.End()

	if err := o.session.Start(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	o.emit(events.NewSessionStarted(o.session.PromptID()))

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbound := &dispatcher{
		transport:  o.transport,
		relay:      o.relay,
		transcript: &o.transcript,
		tools:      toolsByName(o.toolset),
		respond:    o.session.SendToolResult,
		emit:       o.emit,
	}

	workerErrs := make(chan error, 3)
	var wg sync.WaitGroup
	startWorker := func(run workerRun, onDone func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(loopCtx); err != nil {
				select {
				case workerErrs <- err:
				default:
				}
			}
			if onDone != nil {
				onDone()
			}
		}()
	}

	// The dispatcher finishing means the inbound stream is done; that ends
	// the conversation whether or not the user asked to stop.
	startWorker(panicSafeNamedWorker("dispatcher", inbound.run), o.Stop)
	if o.capture != nil {
		startWorker(panicSafeNamedWorker("capture", o.runCapture), nil)
	}
	if o.playback != nil {
		startWorker(panicSafeNamedWorker("playback", o.runPlayback), nil)
	}

	var runErr error
	select {
	case <-o.stop:
	case <-ctx.Done():
	case runErr = <-workerErrs:
	}

	// Shutdown ordering is load-bearing: stop feeding audio first, then
	// cancel the loops so capture closes the audio stream, and only then
	// end the prompt and session.
	o.session.Deactivate()
	cancel()
	wg.Wait()
	o.relay.Close()

	if err := o.session.End(context.WithoutCancel(ctx)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	o.emit(events.NewSessionEnded())

	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
	}
	return runErr
}

func toolsByName(toolset []tools.Tool) map[string]tools.Tool {
	byName := make(map[string]tools.Tool, len(toolset))
	for _, tool := range toolset {
		byName[tool.Name()] = tool
	}
	return byName
}
