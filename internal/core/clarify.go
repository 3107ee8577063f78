package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kbdesk/kbdesk/internal/storage"
	"github.com/kbdesk/kbdesk/pkg/models"
)

const (
	noPendingSelectionText = "There is no pending selection right now. Ask me a question instead."
	clarifyApologyText     = "I found something close but I'm not sure it answers your question. Could you rephrase it with a bit more detail?"
)

// ClarificationEngine builds numbered-option prompts for ambiguous
// matches and resolves the user's numeric reply.
type ClarificationEngine struct {
	cfg      EngineConfig
	sessions storage.SessionStore
}

// NewClarificationEngine creates a clarification engine over a session
// store.
func NewClarificationEngine(cfg EngineConfig, sessions storage.SessionStore) *ClarificationEngine {
	return &ClarificationEngine{cfg: cfg, sessions: sessions}
}

// Awaiting reports whether the user has a live clarification session.
func (c *ClarificationEngine) Awaiting(userID string) bool {
	_, ok := c.sessions.Get(userID)
	return ok
}

// Invalidate drops any pending session for the user.
func (c *ClarificationEngine) Invalidate(userID string) {
	c.sessions.Clear(userID)
}

// BuildClarification turns a below-resolution match into a numbered
// prompt. Alternatives share at least one tag with the best match and are
// ranked by tag overlap, manual entries winning ties over button and menu
// entries. Without alternatives the reply is an apology and no session is
// created. Any previous session for the user is overwritten.
func (c *ClarificationEngine) BuildClarification(userID, query string, idx *KnowledgeIndex, best *models.KnowledgeEntry) models.Reply {
	type ranked struct {
		entry models.KnowledgeEntry
		score float64
	}

	entries := idx.Entries()
	var alternatives []ranked
	for i := range entries {
		if entries[i].ID == best.ID {
			continue
		}
		shared := sharedTags(best.Tags, entries[i].Tags)
		if shared == 0 {
			continue
		}
		denominator := len(best.Tags)
		if denominator == 0 {
			denominator = 1
		}
		score := float64(shared) / float64(denominator)
		if entries[i].Source == models.SourceManual {
			score += 0.001
		}
		alternatives = append(alternatives, ranked{entry: entries[i], score: score})
	}
	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].score > alternatives[j].score
	})

	if len(alternatives) == 0 {
		c.sessions.Clear(userID)
		return models.Reply{Text: clarifyApologyText}
	}

	limit := c.cfg.MaxClarifyOptions
	if limit < 2 {
		limit = 2
	}

	options := map[int]models.KnowledgeEntry{1: *best}
	var b strings.Builder
	b.WriteString("I'm not fully sure which of these you mean. Reply with a number:\n")
	fmt.Fprintf(&b, "1. %s%s\n", best.Question, tagPreview(best.Tags))
	for i, alt := range alternatives {
		n := i + 2
		if n > limit {
			break
		}
		options[n] = alt.entry
		fmt.Fprintf(&b, "%d. %s%s\n", n, alt.entry.Question, tagPreview(alt.entry.Tags))
	}

	c.sessions.Set(userID, &storage.ClarificationSession{Query: query, Options: options})
	return models.Reply{Text: strings.TrimRight(b.String(), "\n"), AwaitingSelection: true}
}

// PendingQuery returns the query that opened the user's live session, if
// any.
func (c *ClarificationEngine) PendingQuery(userID string) (string, bool) {
	session, ok := c.sessions.Get(userID)
	if !ok {
		return "", false
	}
	return session.Query, true
}

// ResolveSelection consumes the user's numeric reply. Sessions are
// one-shot: both valid and out-of-range selections clear the session. The
// second return value reports whether the selection picked an option.
func (c *ClarificationEngine) ResolveSelection(userID string, n int) (models.Reply, bool) {
	session, ok := c.sessions.Get(userID)
	if !ok {
		return models.Reply{Text: noPendingSelectionText}, false
	}
	c.sessions.Clear(userID)

	entry, ok := session.Options[n]
	if !ok {
		return models.Reply{Text: fmt.Sprintf("Option %d is not on the list. Please ask your question again.", n)}, false
	}
	return models.Reply{Text: entry.Answer}, true
}

func sharedTags(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}
	shared := 0
	for _, tag := range b {
		if _, ok := set[tag]; ok {
			shared++
		}
	}
	return shared
}

func tagPreview(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	preview := tags
	if len(preview) > 3 {
		preview = preview[:3]
	}
	return fmt.Sprintf("  (%s)", strings.Join(preview, ", "))
}
