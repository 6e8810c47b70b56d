package io

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantData string
		wantRef  int
		wantCode errs.Code
	}{
		{"simple", "A;1", "A", 1, ""},
		{"none", "B;-1", "B", -1, ""},
		{"carriage return", "C;0\r", "C", 0, ""},
		{"empty payload", ";3", "", 3, ""},
		{"separator in payload", "a;b;c;2", "a;b;c", 2, ""},
		{"spaces around index", "x; 7 ", "x", 7, ""},
		{"int32 max", "x;2147483647", "x", 2147483647, ""},
		{"missing separator", "abc", "", 0, errs.ErrCodeMissingSeparator},
		{"empty line", "", "", 0, errs.ErrCodeMissingSeparator},
		{"non integer", "abc;xyz", "", 0, errs.ErrCodeInvalidIndexFormat},
		{"trailing garbage", "abc;5abc", "", 0, errs.ErrCodeInvalidIndexFormat},
		{"empty index", "abc;", "", 0, errs.ErrCodeInvalidIndexFormat},
		{"overflow", "abc;2147483648", "", 0, errs.ErrCodeInvalidIndexFormat},
		{"hex", "abc;0x1", "", 0, errs.ErrCodeInvalidIndexFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseLine(tt.line)
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Fatalf("ParseLine(%q) error = %v, want %s", tt.line, err, tt.wantCode)
				}
				if !errs.IsParseError(err) {
					t.Errorf("ParseLine(%q) error should be a parse error", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine(%q) error: %v", tt.line, err)
			}
			if string(e.Data) != tt.wantData || e.CrossRef != tt.wantRef {
				t.Errorf("ParseLine(%q) = (%q, %d), want (%q, %d)", tt.line, e.Data, e.CrossRef, tt.wantData, tt.wantRef)
			}
		})
	}
}

func TestReadText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"trailing newline", "A;1\nB;-1\nC;0\n", 3},
		{"no trailing newline", "A;1\nB;-1\nC;0", 3},
		{"crlf", "A;1\r\nB;-1\r\nC;0\r\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ReadText(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadText() error: %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("ReadText() = %d entries, want %d", len(entries), tt.want)
			}
			for i, e := range entries {
				if e.Line != i+1 {
					t.Errorf("entry %d Line = %d, want %d", i, e.Line, i+1)
				}
			}
		})
	}
}

func TestReadTextErrorNamesLine(t *testing.T) {
	_, err := ReadText(strings.NewReader("A;1\nabc;xyz\nC;0\n"))
	if !errs.Is(err, errs.ErrCodeInvalidIndexFormat) {
		t.Fatalf("ReadText() error = %v, want PARSE_INVALID_INDEX_FORMAT", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err)
	}
}

func TestReadTextStopsAtLimit(t *testing.T) {
	g := list.NewGuard(2)
	// The third line is malformed; it must never be parsed.
	entries, err := ReadText(strings.NewReader("a;-1\nb;0\nnot a record\n"), WithGuard(g))
	if err != nil {
		t.Fatalf("ReadText() error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("ReadText() = %d entries, want 2", len(entries))
	}
	if g.Admitted() != 2 {
		t.Errorf("Admitted() = %d, want 2", g.Admitted())
	}
}

func TestBuildTextCap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cap test in short mode")
	}
	var buf bytes.Buffer
	for i := 0; i <= list.MaxNodes; i++ {
		buf.WriteString("x;-1\n")
	}
	s, err := BuildText(&buf)
	if err != nil {
		t.Fatalf("BuildText() error: %v", err)
	}
	if s.Len() != list.MaxNodes {
		t.Errorf("Len() = %d, want %d", s.Len(), list.MaxNodes)
	}
}

func TestBuildTextScenario(t *testing.T) {
	s, err := BuildText(strings.NewReader("A;1\nB;-1\nC;0\n"))
	if err != nil {
		t.Fatalf("BuildText() error: %v", err)
	}
	want := []struct {
		data string
		ref  string
		has  bool
	}{{"A", "B", true}, {"B", "", false}, {"C", "A", true}}

	s.Walk(func(pos, idx int, n list.Node) bool {
		if string(n.Data) != want[pos].data {
			t.Errorf("pos %d data = %q, want %q", pos, n.Data, want[pos].data)
		}
		ref, ok := s.CrossRefData(idx)
		if ok != want[pos].has || string(ref) != want[pos].ref {
			t.Errorf("pos %d cross-ref = (%q, %v), want (%q, %v)", pos, ref, ok, want[pos].ref, want[pos].has)
		}
		return true
	})
}

func TestBuildTextInvalidCrossReference(t *testing.T) {
	_, err := BuildText(strings.NewReader("a;-1\nabc;5\nc;0\n"))
	if !errs.Is(err, errs.ErrCodeInvalidCrossReference) {
		t.Fatalf("BuildText() error = %v, want INVALID_CROSS_REFERENCE", err)
	}
	if !strings.Contains(err.Error(), "too large") || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should say too large and name line 2", err)
	}

	_, err = BuildText(strings.NewReader("a;-2\n"))
	if !errs.Is(err, errs.ErrCodeInvalidCrossReference) || !strings.Contains(err.Error(), "too small") {
		t.Errorf("BuildText(-2) error = %v, want too small INVALID_CROSS_REFERENCE", err)
	}
}

func TestWriteTextRoundTrip(t *testing.T) {
	in := "A;1\nB;-1\nC;0\nsemi;colon;2\n"
	s, err := BuildText(strings.NewReader(in))
	if err != nil {
		t.Fatalf("BuildText() error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteText(s, &buf); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	if buf.String() != in {
		t.Errorf("WriteText() = %q, want %q", buf.String(), in)
	}
}

func TestWriteTextRejectsUnreadablePayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"newline", "a\nb", true},
		{"trailing newline", "a\n", true},
		{"trailing carriage return", "a\r", true},
		{"inner carriage return", "a\rb", false},
		{"separator", "a;b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := list.Build([]list.Entry{
				{Data: []byte("ok"), CrossRef: 1},
				{Data: []byte(tt.payload), CrossRef: list.None},
			})
			if err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			err = WriteText(s, &buf)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("WriteText() error: %v", err)
				}
				back, err := BuildText(&buf)
				if err != nil {
					t.Fatalf("BuildText() error: %v", err)
				}
				if err := list.Compare(s, back); err != nil {
					t.Errorf("round trip mismatch: %v", err)
				}
				return
			}

			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Fatalf("WriteText() error = %v, want INVALID_INPUT", err)
			}
			if !strings.Contains(err.Error(), "position 1") {
				t.Errorf("error should name position 1: %v", err)
			}
			if buf.Len() != 0 {
				t.Errorf("WriteText() wrote %q before failing", buf.String())
			}
		})
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestReadTextIOError(t *testing.T) {
	if _, err := ReadText(errReader{}); !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("ReadText() error = %v, want IO_ERROR", err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "inlet.in")
	out := filepath.Join(dir, "outlet.out")
	if err := os.WriteFile(in, []byte("A;1\nB;-1\nC;0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := ImportText(in)
	if err != nil {
		t.Fatalf("ImportText() error: %v", err)
	}
	if err := ExportBinary(s, out); err != nil {
		t.Fatalf("ExportBinary() error: %v", err)
	}
	back, err := ImportBinary(out)
	if err != nil {
		t.Fatalf("ImportBinary() error: %v", err)
	}
	if err := list.Compare(s, back); err != nil {
		t.Errorf("round trip mismatch: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 31 {
		t.Errorf("binary size = %d, want 31", info.Size())
	}
}

func TestMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := ImportText(filepath.Join(dir, "nope.in")); !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("ImportText() error = %v, want IO_ERROR", err)
	}
	if _, err := ImportBinary(filepath.Join(dir, "nope.out")); !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("ImportBinary() error = %v, want IO_ERROR", err)
	}
	if err := ExportBinary(list.New(0), filepath.Join(dir, "missing", "out")); !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("ExportBinary() error = %v, want IO_ERROR", err)
	}
}
