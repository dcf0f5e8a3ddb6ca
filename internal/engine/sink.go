package engine

import (
	"fmt"
	"io"
	"os"
)

// Sink receives the relayed output of each iteration. BeginIteration is
// called once per iteration before the child spawns; Flush once after the
// whole run ends.
type Sink interface {
	BeginIteration()
	Emit(ev LineEvent)
	Flush()
}

// StreamSink relays lines immediately: stdout lines to Stdout, stderr lines
// to Stderr.
type StreamSink struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewStreamSink creates a StreamSink on the process's own output channels.
func NewStreamSink() *StreamSink {
	return &StreamSink{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (s *StreamSink) BeginIteration() {}

func (s *StreamSink) Emit(ev LineEvent) {
	if ev.Source == SourceStderr {
		fmt.Fprintln(s.Stderr, ev.Text)
		return
	}
	fmt.Fprintln(s.Stdout, ev.Text)
}

func (s *StreamSink) Flush() {}

// LastOnlySink retains only the current iteration's lines and prints them,
// in order and on their original channels, when Flush is called after the
// run.
type LastOnlySink struct {
	Stdout io.Writer
	Stderr io.Writer

	lines []LineEvent
}

// NewLastOnlySink creates a LastOnlySink on the process's own output
// channels.
func NewLastOnlySink() *LastOnlySink {
	return &LastOnlySink{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (s *LastOnlySink) BeginIteration() {
	s.lines = s.lines[:0]
}

func (s *LastOnlySink) Emit(ev LineEvent) {
	s.lines = append(s.lines, ev)
}

func (s *LastOnlySink) Flush() {
	for _, ev := range s.lines {
		if ev.Source == SourceStderr {
			fmt.Fprintln(s.Stderr, ev.Text)
			continue
		}
		fmt.Fprintln(s.Stdout, ev.Text)
	}
}
