// Package observability provides event logging and metrics for kbdesk.
// Matching activity is persisted as structured JSON Lines (JSONL) and
// metrics are derived on-demand from the event log.
package observability
