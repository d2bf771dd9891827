package strip

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func stripString(t *testing.T, in string) string {
	t.Helper()
	var out bytes.Buffer
	if err := Strip(&out, strings.NewReader(in)); err != nil {
		t.Fatalf("Strip(%q): %v", in, err)
	}
	return out.String()
}

func TestStrip(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no comments or blank lines passes through", "a { color: red; }\nb { top: 0; }", "a { color: red; }\nb { top: 0; }"},
		{"comment removed", "a/*comment*/b", "ab"},
		{"comment spanning lines", "a/*one\ntwo\nthree*/b", "ab"},
		{"unterminated comment drops rest", "a/*comment", "a"},
		{"unterminated opener at very end", "a/*", "a"},
		{"nested comments end at outermost closer", "a/*outer/*inner*/still-outer*/b", "ab"},
		{"doubly nested", "a/*1/*2/*3*/2*/1*/b", "ab"},
		{"blank lines collapse to one", "a\n\n\nb", "a\nb"},
		{"leading blank lines dropped", "\n\na", "a"},
		{"mixed cr and lf collapse to first", "a\r\n\r\nb", "a\rb"},
		{"whitespace-only line preserved", "a\n   \nb", "a\n   \nb"},
		{"tab-only line preserved", "a\n\t\nb", "a\n\t\nb"},
		{"slash without star passes through", "a / b", "a / b"},
		{"star without slash passes through", "a * b", "a * b"},
		{"closer outside comment passes through", "a*/b", "a*/b"},
		{"delimiter split by whitespace opens", "a/\n*comment*\n/b", "ab"},
		{"delimiter split by spaces opens", "a/ *comment* /b", "ab"},
		{"slash at end of input emitted", "a/", "a/"},
		{"slash then only whitespace emitted", "a/ \t", "a/ \t"},
		{"slash in comment body stays hidden", "a/*x/y*/b", "ab"},
		{"star in comment body stays hidden", "a/*x**y*/b", "ab"},
		{"adjacent comments", "a/*1*/atop/*2*/b", "aatopb"},
		{"comment containing blank lines", "a/*\n\n\n*/b", "ab"},
		{"break flag survives across comment", "a\n/*c*/\n\nb", "a\nb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := stripString(t, tc.in)
			if got != tc.want {
				t.Fatalf("Strip(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripRealisticStylesheet(t *testing.T) {
	in := "/* site styles */\n" +
		"body {\n" +
		"  margin: 0; /* reset */\n" +
		"}\n" +
		"\n" +
		"\n" +
		"/* buttons\n" +
		"   /* nested note */\n" +
		"   still commented */\n" +
		".btn { color: blue; }\n"
	want := "body {\n" +
		"  margin: 0; \n" +
		"}\n" +
		".btn { color: blue; }\n"
	if got := stripString(t, in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// The peek must not consume: whitespace skipped while looking past a '/'
// that turns out not to open a comment has to be emitted afterwards.
func TestStripPeekDoesNotConsume(t *testing.T) {
	if got := stripString(t, "a/ \t x"); got != "a/ \t x" {
		t.Fatalf("got %q", got)
	}
}

// A lookahead across a long whitespace run must not consume the run or
// hold it anywhere: the scanner keeps at most one byte outside the
// reader's own fixed-size buffer, however long the run is.
func TestPeekAcrossLongWhitespaceRunBuffersNothing(t *testing.T) {
	run := 1 << 20
	s := newScanner(strings.NewReader(strings.Repeat(" ", run) + "x"))
	_, _, ok, err := s.peekSignificant()
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if ok {
		t.Fatal("significant byte reported beyond the lookahead window")
	}
	if s.hasPending {
		t.Fatal("peek left a byte held back")
	}
	for i := 0; i < run; i++ {
		b, err := s.readByte()
		if err != nil || b != ' ' {
			t.Fatalf("byte %d: %q, %v", i, b, err)
		}
	}
	if b, err := s.readByte(); err != nil || b != 'x' {
		t.Fatalf("final byte: %q, %v", b, err)
	}
}

// Inside a comment the whitespace is discarded as it is read, so
// delimiter halves any distance apart still match, in constant memory.
func TestStripHugeWhitespaceInsideComment(t *testing.T) {
	in := "a/*" + strings.Repeat("\n", 1<<20) + "*/b"
	if got := stripString(t, in); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
}

func TestStripCloserSplitByHugeWhitespace(t *testing.T) {
	in := "a/*x*" + strings.Repeat(" ", 1<<20) + "/b"
	if got := stripString(t, in); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
}

// The opener check looks a fixed window ahead. A '*' separated from its
// '/' by more whitespace than the window is plain text.
func TestOpenerGapBeyondWindowIsPlainText(t *testing.T) {
	in := "a/" + strings.Repeat(" ", peekWindow+1) + "*b"
	if got := stripString(t, in); got != in {
		t.Fatalf("got %d bytes, want input unchanged (%d bytes)", len(got), len(in))
	}
}

func TestStripPropagatesReadErrorDuringPeek(t *testing.T) {
	boom := errors.New("device gone")
	var out bytes.Buffer
	err := Strip(&out, &errReader{data: []byte("a/"), err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

type errReader struct {
	data []byte
	err  error
}

func (r *errReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestStripPropagatesReadError(t *testing.T) {
	boom := errors.New("device gone")
	var out bytes.Buffer
	err := Strip(&out, &errReader{data: []byte("abc"), err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestStripPropagatesReadErrorInsideComment(t *testing.T) {
	boom := errors.New("device gone")
	var out bytes.Buffer
	err := Strip(&out, &errReader{data: []byte("a/*never closed"), err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

type failWriter struct{ err error }

func (w *failWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestStripPropagatesWriteError(t *testing.T) {
	boom := errors.New("disk full")
	// Input longer than the bufio.Writer buffer so the failure surfaces
	// before the final flush as well as during it.
	in := strings.Repeat("x", 1<<16)
	err := Strip(&failWriter{err: boom}, strings.NewReader(in))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
