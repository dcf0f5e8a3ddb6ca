package engine

import (
	"bufio"
	"io"
	"sync"
)

// Source identifies which output channel produced a line.
type Source int

const (
	SourceStdout Source = iota
	SourceStderr
)

// String returns the channel name.
func (s Source) String() string {
	if s == SourceStderr {
		return "stderr"
	}
	return "stdout"
}

// LineEvent is one decoded line from a child, or a terminal read error on
// that channel. A non-nil Err ends the stream for its channel and is fatal
// for the whole run.
type LineEvent struct {
	Source Source
	Text   string
	Err    error
}

// mergeLines fans both output channels of one child into a single stream of
// line events, in arrival order. The returned channel closes only when both
// underlying readers have ended. Within one channel the produced order is
// preserved; across channels only arrival order is guaranteed.
func mergeLines(stdout, stderr io.ReadCloser) <-chan LineEvent {
	events := make(chan LineEvent)

	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(stdout, SourceStdout, events, &wg)
	go scanLines(stderr, SourceStderr, events, &wg)
	go func() {
		wg.Wait()
		close(events)
	}()

	return events
}

// scanLines decodes one output channel line by line. A scan error (bad
// framing, oversized line, I/O failure) is forwarded as a terminal event.
func scanLines(r io.ReadCloser, src Source, events chan<- LineEvent, wg *sync.WaitGroup) {
	defer wg.Done()
	defer r.Close()

	scanner := bufio.NewScanner(r)
	// Larger buffer for potentially long lines
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		events <- LineEvent{Source: src, Text: scanner.Text()}
	}
	if err := scanner.Err(); err != nil {
		events <- LineEvent{Source: src, Err: err}
	}
}
