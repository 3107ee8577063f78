package core

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kbdesk/kbdesk/internal/observability"
	"github.com/kbdesk/kbdesk/internal/storage"
	"github.com/kbdesk/kbdesk/pkg/models"
)

const (
	welcomeText = "Hi! I answer questions about invoices, payments, reports and other day-to-day tasks.\n" +
		"Try asking, for example:\n" +
		"- How do I create an invoice?\n" +
		"- Where can I find the sales report?\n" +
		"- How do I register a supplier payment?"
	helpText = "Ask me a question in plain words. If I'm unsure I'll offer numbered options; reply with a number to pick one.\n" +
		"Commands: /start, /help, /learn question | answer, /stats"
	learnUsageText = "To teach me something, use: /learn question | answer"
	noMatchText    = "I couldn't find an answer to that. Try rephrasing, or ask something like \"how do I create an invoice\" or \"where is the sales report\"."
	errorText      = "Something went wrong while handling that. Please try again."
)

// Engine is the façade tying normalization, matching, clarification and
// knowledge management together. Safe for concurrent use: the index is an
// immutable snapshot swapped atomically on reload.
type Engine struct {
	cfg        EngineConfig
	store      storage.KnowledgeStoreManager
	normalizer *Normalizer
	resolver   *MatchResolver
	classifier *IntentClassifier
	clarifier  *ClarificationEngine
	index      atomic.Pointer[KnowledgeIndex]
	logger     *zap.Logger
	events     observability.EventLog
	metrics    observability.MetricsCalculator

	// appendMu serializes the append-reload-swap sequence so concurrent
	// appends cannot publish an index missing another writer's entry.
	appendMu sync.Mutex
}

// NewEngine builds an engine over the given store. A store load failure
// does not fail construction: the engine degrades to an empty collection
// and keeps answering with the no-match fallback.
func NewEngine(cfg EngineConfig, store storage.KnowledgeStoreManager, sessions storage.SessionStore, logger *zap.Logger, events observability.EventLog) *Engine {
	normalizer := NewNormalizer()
	e := &Engine{
		cfg:        cfg,
		store:      store,
		normalizer: normalizer,
		resolver:   NewMatchResolver(cfg, normalizer),
		classifier: NewIntentClassifier(normalizer),
		clarifier:  NewClarificationEngine(cfg, sessions),
		logger:     logger,
		events:     events,
		metrics:    observability.NewMetricsCalculator(events),
	}

	entries, err := e.loadEntries()
	if err != nil {
		logger.Warn("knowledge base load failed, starting with empty collection", zap.Error(err))
		_ = events.Write(observability.NewEvent("WARN", observability.EventKnowledgeLoadFailed,
			"knowledge base load failed", map[string]any{"error": err.Error()}))
		entries = nil
	}
	e.index.Store(BuildIndex(entries, normalizer))
	return e
}

func (e *Engine) loadEntries() ([]models.KnowledgeEntry, error) {
	if err := e.store.Load(); err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}
	entries, err := e.store.GetAllEntries()
	if err != nil {
		return nil, fmt.Errorf("reading knowledge entries: %w", err)
	}
	return entries, nil
}

// Size reports the number of entries in the current index snapshot.
func (e *Engine) Size() int {
	return e.index.Load().Size()
}

// Entries returns a copy of the current index snapshot's entries.
func (e *Engine) Entries() []models.KnowledgeEntry {
	return e.index.Load().Entries()
}

// ClassifyIntent exposes the intent classifier for callers that want the
// label alongside the answer.
func (e *Engine) ClassifyIntent(text string) (string, float64) {
	return e.classifier.ClassifyWithConfidence(text)
}

// Answer handles one inbound message for one user and returns the reply.
// It never panics: failures inside the match flow surface as a generic
// error reply.
func (e *Engine) Answer(userID, rawText string) (reply models.Reply) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("recovered from panic while answering",
				zap.Any("panic", r), zap.String("user", userID))
			reply = models.Reply{Text: errorText}
		}
	}()

	input := ClassifyInput(rawText)
	switch input.Kind {
	case InputCommand:
		e.clarifier.Invalidate(userID)
		return e.answerCommand(userID, input)
	case InputButtonClick:
		e.clarifier.Invalidate(userID)
		return e.answerButtonClick(userID, input)
	case InputSelection:
		if e.clarifier.Awaiting(userID) {
			query, _ := e.clarifier.PendingQuery(userID)
			reply, resolved := e.clarifier.ResolveSelection(userID, input.Selection)
			if resolved {
				_ = e.events.Write(observability.NewEvent("INFO", observability.EventSelectionResolved,
					"clarification selection resolved",
					map[string]any{"user": userID, "option": input.Selection, "query": query}))
			}
			return reply
		}
		// A bare number without a pending session is just text.
		return e.answerText(userID, input.Text)
	default:
		// Any non-numeric message abandons a pending clarification.
		e.clarifier.Invalidate(userID)
		return e.answerText(userID, input.Text)
	}
}

func (e *Engine) answerCommand(userID string, input Input) models.Reply {
	switch input.Command {
	case "start":
		return models.Reply{Text: welcomeText}
	case "help":
		return models.Reply{Text: helpText}
	case "learn":
		return e.answerLearn(userID, input.Args)
	case "stats":
		return e.answerStats()
	default:
		return models.Reply{Text: fmt.Sprintf("Unknown command /%s. %s", input.Command, helpText)}
	}
}

// answerLearn handles the in-chat append form "/learn question | answer".
func (e *Engine) answerLearn(userID, args string) models.Reply {
	question, answer, ok := strings.Cut(args, "|")
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if !ok || question == "" || answer == "" {
		return models.Reply{Text: learnUsageText}
	}

	id, err := e.AddKnowledgeEntry(question, answer, nil, models.SourceManual, nil)
	if err != nil {
		e.logger.Error("learn command failed",
			zap.String("user", userID), zap.Error(err))
		return models.Reply{Text: errorText}
	}
	return models.Reply{Text: fmt.Sprintf("Got it. I saved that as %s and can answer it now.", id)}
}

func (e *Engine) answerStats() models.Reply {
	m, err := e.metrics.Calculate(time.Time{})
	if err != nil {
		e.logger.Error("stats command failed", zap.Error(err))
		return models.Reply{Text: errorText}
	}
	return models.Reply{Text: fmt.Sprintf(
		"Knowledge entries: %d\nQuestions answered: %d\nUnanswered: %d\nClarifications offered: %d\nSelections resolved: %d",
		e.Size(), m.QueriesAnswered, m.QueriesUnmatched, m.Clarifications, m.SelectionsResolved)}
}

func (e *Engine) answerButtonClick(userID string, input Input) models.Reply {
	idx := e.index.Load()
	result := e.resolver.ResolveButtonClick(idx, input.SourceKind, input.Payload)
	if !result.Matched() {
		_ = e.events.Write(observability.NewEvent("INFO", observability.EventQueryNoMatch,
			"button click unresolved",
			map[string]any{"user": userID, "kind": input.SourceKind, "payload": input.Payload}))
		return models.Reply{Text: noMatchText}
	}
	_ = e.events.Write(observability.NewEvent("INFO", observability.EventQueryAnswered,
		"button click resolved",
		map[string]any{"user": userID, "entry": result.Entry.ID, "confidence": result.Confidence}))
	return models.Reply{Text: result.Entry.Answer}
}

func (e *Engine) answerText(userID, text string) models.Reply {
	if strings.TrimSpace(text) == "" {
		return models.Reply{Text: noMatchText}
	}
	idx := e.index.Load()

	if entry := e.resolver.FindByExactQuestion(idx, text, ""); entry != nil {
		_ = e.events.Write(observability.NewEvent("INFO", observability.EventQueryAnswered,
			"exact match", map[string]any{"user": userID, "entry": entry.ID}))
		return models.Reply{Text: entry.Answer}
	}

	result := e.resolver.FindBestMatch(idx, text)
	if !result.Matched() {
		intent, _ := e.classifier.ClassifyWithConfidence(text)
		_ = e.events.Write(observability.NewEvent("INFO", observability.EventQueryNoMatch,
			"no match", map[string]any{"user": userID, "intent": intent}))
		return models.Reply{Text: noMatchText}
	}

	if result.Confidence >= e.cfg.ResolutionThreshold {
		_ = e.events.Write(observability.NewEvent("INFO", observability.EventQueryAnswered,
			"fuzzy match", map[string]any{
				"user": userID, "entry": result.Entry.ID, "confidence": result.Confidence,
			}))
		return models.Reply{Text: result.Entry.Answer}
	}

	reply := e.clarifier.BuildClarification(userID, text, idx, result.Entry)
	if reply.AwaitingSelection {
		_ = e.events.Write(observability.NewEvent("INFO", observability.EventQueryClarified,
			"clarification offered", map[string]any{
				"user": userID, "best": result.Entry.ID, "confidence": result.Confidence,
			}))
	} else {
		_ = e.events.Write(observability.NewEvent("INFO", observability.EventQueryNoMatch,
			"low confidence, no alternatives", map[string]any{
				"user": userID, "best": result.Entry.ID, "confidence": result.Confidence,
			}))
	}
	return reply
}

// AddKnowledgeEntry validates and persists a new entry, then reloads the
// collection and swaps the index so the entry is findable immediately.
// Safe for concurrent use: appends are serialized end to end.
func (e *Engine) AddKnowledgeEntry(question, answer string, tags []string, source models.SourceKind, metadata map[string]string) (string, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return "", fmt.Errorf("question cannot be empty")
	}
	if answer == "" {
		return "", fmt.Errorf("answer cannot be empty")
	}

	e.appendMu.Lock()
	defer e.appendMu.Unlock()

	id, err := e.store.GenerateID()
	if err != nil {
		return "", fmt.Errorf("generating entry ID: %w", err)
	}
	entry := models.KnowledgeEntry{
		ID:       id,
		Question: question,
		Answer:   answer,
		Tags:     tags,
		Source:   source,
		Metadata: metadata,
	}
	if _, err := e.store.AddEntry(entry); err != nil {
		return "", fmt.Errorf("adding knowledge entry: %w", err)
	}

	entries, err := e.loadEntries()
	if err != nil {
		return "", fmt.Errorf("reloading knowledge base: %w", err)
	}
	e.index.Store(BuildIndex(entries, e.normalizer))

	e.logger.Info("knowledge entry added", zap.String("id", id), zap.String("question", question))
	_ = e.events.Write(observability.NewEvent("INFO", observability.EventKnowledgeAppended,
		"knowledge entry added", map[string]any{"id": id}))
	return id, nil
}

// Search returns entries whose question or tags contain the normalized
// query, for the CLI search surface.
func (e *Engine) Search(query string) []models.KnowledgeEntry {
	normalized := e.normalizer.Normalize(query)
	if normalized == "" {
		return nil
	}
	var out []models.KnowledgeEntry
	for _, entry := range e.index.Load().Entries() {
		if strings.Contains(e.normalizer.Normalize(entry.Question), normalized) {
			out = append(out, entry)
			continue
		}
		for _, tag := range entry.Tags {
			if strings.Contains(e.normalizer.Normalize(tag), normalized) {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}
