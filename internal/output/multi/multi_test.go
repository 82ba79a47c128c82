package multi

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crimson-sun/apptimeline/internal/model"
)

// mockOutput records calls for test assertions.
type mockOutput struct {
	reports []model.Report
	closed  bool
	err     error // if set, Write and Close return this error
}

func (m *mockOutput) Write(_ context.Context, report model.Report) error {
	m.reports = append(m.reports, report)
	return m.err
}

func (m *mockOutput) Close() error {
	m.closed = true
	return m.err
}

func TestFanOutDeliversToAll(t *testing.T) {
	a, b, c := &mockOutput{}, &mockOutput{}, &mockOutput{}
	m := New(Sink{"files", a}, Sink{"sqlite", b}, Sink{"stdout", c})

	if err := m.Write(context.Background(), model.Report{RunID: "run-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, out := range []*mockOutput{a, b, c} {
		if len(out.reports) != 1 {
			t.Fatalf("sink %d: got %d reports, want 1", i, len(out.reports))
		}
		if out.reports[0].RunID != "run-1" {
			t.Errorf("sink %d: got run %q, want run-1", i, out.reports[0].RunID)
		}
	}
}

func TestErrorNamesFailingSink(t *testing.T) {
	failing := &mockOutput{err: model.ErrNoClusters}
	healthy := &mockOutput{}
	m := New(Sink{"sqlite", healthy}, Sink{"files", failing})

	err := m.Write(context.Background(), model.Report{})
	if !errors.Is(err, model.ErrNoClusters) {
		t.Fatalf("err = %v, want wrapped ErrNoClusters", err)
	}
	if !strings.Contains(err.Error(), "sink files:") || strings.Contains(err.Error(), "sink sqlite") {
		t.Errorf("err = %q, want only the files sink named", err)
	}
	if len(healthy.reports) != 1 {
		t.Fatalf("healthy sink got %d reports, want 1", len(healthy.reports))
	}
}

func TestCloseCollectsErrors(t *testing.T) {
	a := &mockOutput{err: errors.New("err-a")}
	b := &mockOutput{err: errors.New("err-b")}
	m := New(Sink{"webhook", a}, Sink{"sqlite", b})

	err := m.Close()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !a.closed || !b.closed {
		t.Error("Close should be called on every sink even when errors occur")
	}
	for _, want := range []string{"close sink webhook: err-a", "close sink sqlite: err-b"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("err = %q, missing %q", err, want)
		}
	}
}

func TestEmptyIsNoop(t *testing.T) {
	m := New()
	if err := m.Write(context.Background(), model.Report{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}
