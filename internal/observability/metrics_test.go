package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMetricsCalculation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	now := time.Now().UTC()
	writes := []struct {
		eventType string
		offset    time.Duration
	}{
		{EventQueryAnswered, 0},
		{EventQueryAnswered, time.Minute},
		{EventQueryNoMatch, 2 * time.Minute},
		{EventQueryClarified, 3 * time.Minute},
		{EventSelectionResolved, 4 * time.Minute},
		{EventKnowledgeAppended, 5 * time.Minute},
		{EventKnowledgeLoadFailed, 6 * time.Minute},
	}
	for _, w := range writes {
		e := NewEvent("INFO", w.eventType, w.eventType, nil)
		e.Time = now.Add(w.offset)
		if err := log.Write(e); err != nil {
			t.Fatal(err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if m.QueriesAnswered != 2 {
		t.Errorf("QueriesAnswered = %d, want 2", m.QueriesAnswered)
	}
	if m.QueriesUnmatched != 1 {
		t.Errorf("QueriesUnmatched = %d, want 1", m.QueriesUnmatched)
	}
	if m.Clarifications != 1 {
		t.Errorf("Clarifications = %d, want 1", m.Clarifications)
	}
	if m.SelectionsResolved != 1 {
		t.Errorf("SelectionsResolved = %d, want 1", m.SelectionsResolved)
	}
	if m.EntriesAppended != 1 {
		t.Errorf("EntriesAppended = %d, want 1", m.EntriesAppended)
	}
	if m.LoadFailures != 1 {
		t.Errorf("LoadFailures = %d, want 1", m.LoadFailures)
	}
	if m.EventCount != len(writes) {
		t.Errorf("EventCount = %d, want %d", m.EventCount, len(writes))
	}
	if m.OldestEvent == nil || m.NewestEvent == nil {
		t.Fatal("expected oldest and newest event timestamps")
	}
	if !m.NewestEvent.After(*m.OldestEvent) {
		t.Errorf("NewestEvent %v not after OldestEvent %v", m.NewestEvent, m.OldestEvent)
	}

	want := 2.0 / 3.0
	if diff := m.MatchRate() - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("MatchRate = %v, want %v", m.MatchRate(), want)
	}
}

func TestMetricsSinceCutoff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	now := time.Now().UTC()
	old := NewEvent("INFO", EventQueryAnswered, "old", nil)
	old.Time = now.Add(-48 * time.Hour)
	recent := NewEvent("INFO", EventQueryAnswered, "recent", nil)
	recent.Time = now
	for _, e := range []Event{old, recent} {
		if err := log.Write(e); err != nil {
			t.Fatal(err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if m.QueriesAnswered != 1 {
		t.Errorf("QueriesAnswered = %d, want only the recent event", m.QueriesAnswered)
	}
}

func TestMatchRateEmptyMetrics(t *testing.T) {
	m := &Metrics{}
	if got := m.MatchRate(); got != 0.0 {
		t.Errorf("MatchRate on empty metrics = %v, want 0", got)
	}
}
