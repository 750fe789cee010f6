package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"recommend/internal/domain"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	st, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestHistoryPutGet(t *testing.T) {
	st := newTestStore(t)

	run := domain.Run{
		ID:        "run-1",
		Query:     "best waterproof camera",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		TopK:      50,
		TopN:      10,
		Hits:      50,
		Results: []domain.FormattedResult{
			{Rank: 1, Score: 0.97, ID: "p1", Description: "Dive camera..."},
		},
	}
	if err := st.PutRun(run); err != nil {
		t.Fatalf("PutRun failed: %v", err)
	}

	got, err := st.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Query != run.Query || !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("unexpected run: %+v", got)
	}
	if len(got.Results) != 1 || got.Results[0].ID != "p1" {
		t.Errorf("unexpected results: %+v", got.Results)
	}
}

func TestHistoryGetMissing(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetRun("nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryListNewestFirst(t *testing.T) {
	st := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := domain.Run{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := st.PutRun(run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := st.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "c" || runs[2].ID != "a" {
		t.Errorf("unexpected order: %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	limited, err := st.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != "c" {
		t.Errorf("unexpected limited list: %+v", limited)
	}
}

func TestHistoryReplaceKeepsSingleEntry(t *testing.T) {
	st := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st.PutRun(domain.Run{ID: "a", CreatedAt: base})
	st.PutRun(domain.Run{ID: "a", CreatedAt: base.Add(time.Hour), Query: "updated"})

	runs, err := st.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Query != "updated" {
		t.Errorf("expected one updated run, got %+v", runs)
	}
}

func TestHistoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	st, err := NewHistoryStore(path)
	if err != nil {
		t.Fatal(err)
	}
	st.PutRun(domain.Run{ID: "a", CreatedAt: time.Now()})
	st.Close()

	st, err = NewHistoryStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st.Close()

	if _, err := st.GetRun("a"); err != nil {
		t.Errorf("run lost after reopen: %v", err)
	}
}

func TestHistoryRequiresID(t *testing.T) {
	st := newTestStore(t)
	if err := st.PutRun(domain.Run{}); err == nil {
		t.Error("expected error for empty ID")
	}
}
