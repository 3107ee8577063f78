package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	QueriesAnswered    int        `json:"queries_answered"`
	QueriesUnmatched   int        `json:"queries_unmatched"`
	Clarifications     int        `json:"clarifications"`
	SelectionsResolved int        `json:"selections_resolved"`
	EntriesAppended    int        `json:"entries_appended"`
	LoadFailures       int        `json:"load_failures"`
	EventCount         int        `json:"event_count"`
	OldestEvent        *time.Time `json:"oldest_event,omitempty"`
	NewestEvent        *time.Time `json:"newest_event,omitempty"`
}

// MatchRate is the share of queries resolved to an answer, directly or
// via clarification, out of all answered and unmatched queries.
func (m *Metrics) MatchRate() float64 {
	total := m.QueriesAnswered + m.QueriesUnmatched
	if total == 0 {
		return 0.0
	}
	return float64(m.QueriesAnswered) / float64(total)
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventQueryAnswered:
			m.QueriesAnswered++
		case EventQueryNoMatch:
			m.QueriesUnmatched++
		case EventQueryClarified:
			m.Clarifications++
		case EventSelectionResolved:
			m.SelectionsResolved++
		case EventKnowledgeAppended:
			m.EntriesAppended++
		case EventKnowledgeLoadFailed:
			m.LoadFailures++
		}
	}

	return m, nil
}
