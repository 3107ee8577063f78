package observability

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestEventLog_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{
			Time:    now,
			Level:   "INFO",
			Type:    EventQueryAnswered,
			Message: "fuzzy match",
			Data:    map[string]any{"entry": "KB-00001", "confidence": 0.82},
		},
		{
			Time:    now.Add(time.Second),
			Level:   "WARN",
			Type:    EventKnowledgeLoadFailed,
			Message: "knowledge base load failed",
			Data:    map[string]any{"error": "parsing: yaml"},
		},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}
	if result[0].Type != EventQueryAnswered {
		t.Errorf("expected type %s, got %s", EventQueryAnswered, result[0].Type)
	}
	if result[1].Level != "WARN" {
		t.Errorf("expected level WARN, got %s", result[1].Level)
	}
}

func TestEventLog_FilterByType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	for _, eventType := range []string{EventQueryAnswered, EventQueryNoMatch, EventQueryAnswered} {
		if err := log.Write(NewEvent("INFO", eventType, eventType, nil)); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{Type: EventQueryAnswered})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 answered events, got %d", len(result))
	}
}

func TestEventLog_FilterByTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		e := NewEvent("INFO", EventQueryAnswered, "answered", nil)
		e.Time = now.Add(time.Duration(i) * time.Hour)
		if err := log.Write(e); err != nil {
			t.Fatal(err)
		}
	}

	since := now.Add(30 * time.Minute)
	result, err := log.Read(EventFilter{Since: &since})
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 events after the cutoff, got %d", len(result))
	}
}

func TestEventLog_ReadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	// Remove the file before any read.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading missing file: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected no events, got %d", len(result))
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte("not json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	if err := log.Write(NewEvent("INFO", EventQueryAnswered, "answered", nil)); err != nil {
		t.Fatal(err)
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 decodable event, got %d", len(result))
	}
}

func TestEventLog_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = log.Write(NewEvent("INFO", EventQueryAnswered, "answered", nil))
		}()
	}
	wg.Wait()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 10 {
		t.Fatalf("expected 10 events, got %d", len(result))
	}
}

func TestNopEventLog(t *testing.T) {
	log := NopEventLog()

	if err := log.Write(NewEvent("INFO", EventQueryAnswered, "answered", nil)); err != nil {
		t.Fatalf("nop Write: %v", err)
	}
	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("nop Read: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("nop log returned %d events", len(result))
	}
	if err := log.Close(); err != nil {
		t.Fatalf("nop Close: %v", err)
	}
}
