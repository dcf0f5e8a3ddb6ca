package engine

import (
	"bufio"
	"io"
)

// ItemSource yields the per-iteration value exposed to the child as ITEM.
// Sources are lazy, finite and non-restartable; the engine calls Next at
// most once per iteration. Exhaustion ends the run normally.
type ItemSource interface {
	Next() (string, bool)
}

// Items returns a source over a fixed list of values.
func Items(values []string) ItemSource {
	return &sliceItems{values: values}
}

type sliceItems struct {
	values []string
	next   int
}

func (s *sliceItems) Next() (string, bool) {
	if s.next >= len(s.values) {
		return "", false
	}
	v := s.values[s.next]
	s.next++
	return v, true
}

// LineItems returns a lazy source reading one item per line from r,
// typically standard input. Read errors end the source like exhaustion;
// a broken item pipe is not a reason to fail the run.
func LineItems(r io.Reader) ItemSource {
	return &readerItems{scanner: bufio.NewScanner(r)}
}

type readerItems struct {
	scanner *bufio.Scanner
}

func (s *readerItems) Next() (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}
	return s.scanner.Text(), true
}
