package orchestration

import (
	"sync"

	"github.com/jinzhu/copier"
)

// TranscriptLine is one rendered line of the conversation transcript.
type TranscriptLine struct {
	Role string
	Text string
}

// transcriptLog is the append-only record of rendered transcript lines.
// Single writer: the dispatcher loop. Snapshots are deep copies so UI
// consumers can hold them across further appends.
type transcriptLog struct {
	mu    sync.Mutex
	lines []TranscriptLine
}

func (t *transcriptLog) append(line TranscriptLine) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
}

func (t *transcriptLog) Snapshot() []TranscriptLine {
	t.mu.Lock()
	defer t.mu.Unlock()

	var snapshot []TranscriptLine
	if err := copier.Copy(&snapshot, &t.lines); err != nil {
		snapshot = make([]TranscriptLine, len(t.lines))
		copy(snapshot, t.lines)
	}
	return snapshot
}
