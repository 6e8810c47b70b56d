package list

import (
	"testing"

	errs "github.com/matzehuels/randlist/pkg/errors"
)

func mustBuild(t *testing.T, in []Entry) *Sequence {
	t.Helper()
	s, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return s
}

func TestCompare(t *testing.T) {
	ref := entries("A", 1, "B", -1, "C", 0)

	tests := []struct {
		name     string
		other    []Entry
		wantCode errs.Code
	}{
		{"identical", entries("A", 1, "B", -1, "C", 0), ""},
		{"shorter", entries("A", 1, "B", -1), errs.ErrCodeLengthMismatch},
		{"longer", entries("A", 1, "B", -1, "C", 0, "D", -1), errs.ErrCodeLengthMismatch},
		{"content", entries("A", 1, "B", -1, "X", 0), errs.ErrCodeContentMismatch},
		{"content of cross-ref target", entries("A", 1, "X", -1, "C", 0), errs.ErrCodeCrossReferenceMismatch},
		{"missing cross-ref", entries("A", -1, "B", -1, "C", 0), errs.ErrCodeCrossReferenceMismatch},
		{"extra cross-ref", entries("A", 1, "B", 1, "C", 0), errs.ErrCodeCrossReferenceMismatch},
		{"cross-ref to other content", entries("A", 2, "B", -1, "C", 0), errs.ErrCodeCrossReferenceMismatch},
	}

	a := mustBuild(t, ref)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Compare(a, mustBuild(t, tt.other))
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Compare() error: %v", err)
				}
				return
			}
			if !errs.Is(err, tt.wantCode) {
				t.Errorf("Compare() = %v, want %s", err, tt.wantCode)
			}
			if !errs.IsRoundTripMismatch(err) {
				t.Errorf("Compare() error should be a round-trip mismatch: %v", err)
			}
		})
	}
}

func TestCompareByContentNotPosition(t *testing.T) {
	// Node 0 references a different position holding the same payload.
	a := mustBuild(t, entries("A", 1, "dup", -1, "dup", -1))
	b := mustBuild(t, entries("A", 2, "dup", -1, "dup", -1))
	if !Equal(a, b) {
		t.Errorf("cross-references to equal content should be equivalent: %v", Compare(a, b))
	}
}

func TestCompareFirstDisagreement(t *testing.T) {
	a := mustBuild(t, entries("A", -1, "B", -1, "C", -1))
	b := mustBuild(t, entries("A", -1, "X", 0, "Y", -1))
	err := Compare(a, b)
	if !errs.Is(err, errs.ErrCodeContentMismatch) {
		t.Fatalf("Compare() = %v, want content mismatch", err)
	}
	if got := errs.UserMessage(err); got != `position 1: data "B" != "X"` {
		t.Errorf("message = %q", got)
	}
}

func TestEqualEmpty(t *testing.T) {
	if !Equal(New(0), New(0)) {
		t.Error("empty sequences should be equal")
	}
}
