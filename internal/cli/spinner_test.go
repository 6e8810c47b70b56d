package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// captureStatus redirects status lines to a buffer for the rest of the test.
func captureStatus(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := statusOut
	statusOut = &buf
	t.Cleanup(func() { statusOut = old })
	return &buf
}

func TestSpinnerDrawsMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Encoding and verifying inlet.in...")
	s.Start()
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Encoding and verifying inlet.in...") {
		t.Errorf("spinner output missing message: %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner should leave the line cleared: %q", out)
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerStopsWithCommandContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	s := newSpinner(ctx, &buf, "Loading 3 nodes as inlet...")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("spinner kept running after its context ended")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after the command context ended")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Connecting...")
	s.Stop()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	status := captureStatus(t)
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Encoding and verifying inlet.in...")
	s.Start()
	s.StopWithSuccess("Round trip of 3 nodes verified")

	got := status.String()
	if !strings.Contains(got, "Round trip of 3 nodes verified (") {
		t.Errorf("success line = %q", got)
	}
	if !strings.Contains(got, "✓") {
		t.Errorf("success line missing icon: %q", got)
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	status := captureStatus(t)
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Connecting to bolt://localhost:7687...")
	s.Start()
	s.StopWithError("Could not connect to bolt://localhost:7687")

	if got := status.String(); !strings.Contains(got, "✗ Could not connect to bolt://localhost:7687") {
		t.Errorf("error line = %q", got)
	}
}

func TestStatsLine(t *testing.T) {
	tests := []struct {
		nodes, refs, bytes int
		want               []string
		absent             []string
	}{
		{3, 2, 31, []string{"3 nodes", "2 cross-refs", "31 bytes"}, nil},
		{1, 0, 0, []string{"1 node"}, []string{"cross-ref", "byte"}},
		{0, 0, 4, []string{"0 nodes", "4 bytes"}, []string{"cross-ref"}},
	}
	for _, tt := range tests {
		got := statsLine(tt.nodes, tt.refs, tt.bytes)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("statsLine(%d, %d, %d) = %q, missing %q", tt.nodes, tt.refs, tt.bytes, got, w)
			}
		}
		for _, a := range tt.absent {
			if strings.Contains(got, a) {
				t.Errorf("statsLine(%d, %d, %d) = %q, should not mention %q", tt.nodes, tt.refs, tt.bytes, got, a)
			}
		}
	}
}
