package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/leofalp/polyprompt/core/dispatch"
	"github.com/leofalp/polyprompt/providers/ai"
)

func newTarget(id, dispatchID string, status dispatch.Status, start time.Time) dispatch.Target {
	target := dispatch.Target{
		ID:         id,
		DispatchID: dispatchID,
		AgentID:    "agent-" + id,
		Provider:   "openai",
		Model:      "gpt-4o",
		Status:     status,
		HTTPStatus: 200,
		Usage:      ai.Usage{InputTokens: 10, OutputTokens: 5},
		Attempts:   1,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	}
	if status == dispatch.StatusSuccess {
		cost := 0.5
		target.Cost = &cost
		target.Result = ai.Result{Text: "answer " + id}
	} else {
		target.HTTPStatus = 401
		target.Error = ai.HTTPError(401, "bad key")
		target.Result.Error = target.Error
	}
	return target
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Memory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndListDispatch(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, target := range []dispatch.Target{
		newTarget("b", "d1", dispatch.StatusError, start.Add(time.Millisecond)),
		newTarget("a", "d1", dispatch.StatusSuccess, start),
		newTarget("c", "d2", dispatch.StatusSuccess, start.Add(time.Hour)),
	} {
		if err := s.Record(ctx, target); err != nil {
			t.Fatalf("Record %s: %v", target.ID, err)
		}
	}

	targets, err := s.Dispatch(ctx, "d1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(targets) != 2 || targets[0].ID != "a" || targets[1].ID != "b" {
		t.Fatalf("unexpected targets %+v", targets)
	}
	if targets[0].Result.Text != "answer a" || targets[0].Cost == nil || *targets[0].Cost != 0.5 {
		t.Errorf("success snapshot not preserved: %+v", targets[0])
	}
	if !errors.Is(targets[1].Error, ai.ErrHTTP) || targets[1].Error.StatusCode != 401 {
		t.Errorf("error snapshot not preserved: %+v", targets[1].Error)
	}

	summaries, err := s.Dispatches(ctx, 10)
	if err != nil {
		t.Fatalf("Dispatches: %v", err)
	}
	if len(summaries) != 2 || summaries[0].DispatchID != "d2" {
		t.Fatalf("expected newest dispatch first, got %+v", summaries)
	}
	d1 := summaries[1]
	if d1.Targets != 2 || d1.Succeeded != 1 || d1.Failed != 1 || d1.Cost != 0.5 {
		t.Errorf("unexpected summary %+v", d1)
	}
	if !d1.StartedAt.Equal(start) {
		t.Errorf("StartedAt: got %v, want %v", d1.StartedAt, start)
	}
}

func TestStore_RejectsNonTerminalTargets(t *testing.T) {
	s := openStore(t)
	target := newTarget("x", "d", dispatch.StatusSuccess, time.Now())
	target.Status = dispatch.StatusRunning
	if err := s.Record(context.Background(), target); err == nil {
		t.Error("running targets must not be stored")
	}
}

func TestStore_TargetLookup(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if err := s.Record(ctx, newTarget("a", "d", dispatch.StatusSuccess, time.Now())); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got, err := s.Target(ctx, "a"); err != nil || got.AgentID != "agent-a" {
		t.Errorf("Target: %+v, %v", got, err)
	}
	if _, err := s.Target(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

// TestStore_FileBackedSurvivesReopen writes through one handle and reads
// through another.
func TestStore_FileBackedSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Record(context.Background(), newTarget("a", "d", dispatch.StatusSuccess, time.Now())); err != nil {
		t.Fatalf("Record: %v", err)
	}
	s.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	targets, err := reopened.Dispatch(context.Background(), "d")
	if err != nil || len(targets) != 1 {
		t.Errorf("expected one stored target, got %d (%v)", len(targets), err)
	}
}
