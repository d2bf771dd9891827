// Package strip implements the core of cssmini: a single pass over a
// character stream that removes /* ... */ block comments and collapses
// runs of line-break characters.
//
// Comment delimiters may be split by whitespace, so
//
//	/
//	*
//	a comment
//	*
//	/
//
// is stripped just like /* a comment */. A comment that opens but never
// closes comments out the rest of the input. Nested openers are counted;
// only the closer that returns the count to zero ends the comment.
package strip

import (
	"bufio"
	"io"
)

// peekWindow bounds how far the opener check can look for the '*' half of
// a whitespace-split delimiter. A '*' separated from its '/' by more
// whitespace than this is read as plain text. Inside a comment the bound
// does not apply: there the skipped whitespace is discarded as it is
// read, so delimiter halves any distance apart still match.
const peekWindow = 4096

// whitespace reports whether b is insignificant for delimiter lookahead:
// space, tab, carriage return, line feed, or form feed.
func whitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}

// scanner couples the input with the lookahead machinery. Beyond the
// reader's fixed-size buffer it holds at most one pushed-back byte, so
// memory stays constant however large the input or its whitespace runs.
type scanner struct {
	r          *bufio.Reader
	pending    byte
	hasPending bool
}

func newScanner(src io.Reader) *scanner {
	return &scanner{r: bufio.NewReaderSize(src, peekWindow)}
}

func (s *scanner) readByte() (byte, error) {
	if s.hasPending {
		s.hasPending = false
		return s.pending, nil
	}
	return s.r.ReadByte()
}

// unread makes b the next byte readByte returns. At most one byte can be
// held back at a time, and only a significant one ever is.
func (s *scanner) unread(b byte) {
	s.pending = b
	s.hasPending = true
}

// peekSignificant reports the first non-whitespace byte in the unread
// input without consuming anything, along with the number of bytes up to
// and including it. ok is false when the input, or the lookahead window,
// ends before a significant byte turns up.
func (s *scanner) peekSignificant() (b byte, width int, ok bool, err error) {
	if s.hasPending {
		return s.pending, 1, true, nil
	}
	scanned := 0
	for k := 1; ; k *= 2 {
		buf, perr := s.r.Peek(k)
		for i := scanned; i < len(buf); i++ {
			if !whitespace(buf[i]) {
				return buf[i], i + 1, true, nil
			}
		}
		scanned = len(buf)
		if perr == io.EOF || perr == bufio.ErrBufferFull {
			return 0, 0, false, nil
		}
		if perr != nil {
			return 0, 0, false, perr
		}
	}
}

// discard consumes width bytes previously reported by peekSignificant.
func (s *scanner) discard(width int) error {
	if s.hasPending {
		s.hasPending = false
		width--
	}
	if width > 0 {
		if _, err := s.r.Discard(width); err != nil {
			return err
		}
	}
	return nil
}

// skipSignificant consumes input through the first non-whitespace byte
// and returns it. Only called inside a comment, where every skipped
// whitespace byte would be discarded anyway, so nothing needs restoring.
func (s *scanner) skipSignificant() (byte, bool, error) {
	for {
		b, err := s.readByte()
		if err == io.EOF {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		if !whitespace(b) {
			return b, true, nil
		}
	}
}

// Strip copies src to dst with block comments removed and consecutive
// line-break characters collapsed to the first of each run. The input is
// treated as starting just after a line break, so leading blank lines are
// dropped too. Whitespace-only lines are left alone: only literal runs of
// '\r'/'\n' are deduplicated.
//
// Strip reads src exactly once in constant memory and fails only when the
// underlying reader or writer fails; the I/O error is returned unwrapped.
// Closing src and dst is the caller's business.
func Strip(dst io.Writer, src io.Reader) error {
	s := newScanner(src)
	out := bufio.NewWriter(dst)

	// depth counts unmatched comment openers; zero means plain text.
	// lastBreak starts true so a blank line at the very start is dropped.
	depth := 0
	lastBreak := true

	for {
		c, err := s.readByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if depth == 0 {
			if c == '/' {
				b, width, ok, perr := s.peekSignificant()
				if perr != nil {
					return perr
				}
				if ok && b == '*' {
					// Opener. The whitespace between the delimiter
					// halves is part of the comment, so consuming it
					// here is the same discard the comment body gets.
					if err := s.discard(width); err != nil {
						return err
					}
					depth = 1
					continue
				}
			}
			isBreak := c == '\r' || c == '\n'
			if isBreak && lastBreak {
				continue
			}
			if err := out.WriteByte(c); err != nil {
				return err
			}
			lastBreak = isBreak
			continue
		}

		// Inside a comment only delimiter halves matter; everything else
		// is dropped.
		switch c {
		case '/':
			b, ok, err := s.skipSignificant()
			if err != nil {
				return err
			}
			if ok && b == '*' {
				depth++
			} else if ok {
				s.unread(b)
			}
		case '*':
			b, ok, err := s.skipSignificant()
			if err != nil {
				return err
			}
			if ok && b == '/' {
				depth--
			} else if ok {
				s.unread(b)
			}
		}
	}
	return out.Flush()
}
