package models

// SourceKind identifies where a knowledge entry originated: manually
// authored FAQ content, or content mirroring a UI button or menu action.
type SourceKind string

const (
	SourceManual SourceKind = "manual"
	SourceButton SourceKind = "button"
	SourceMenu   SourceKind = "menu"
)

// MetadataButtonLabel is the metadata key holding the human-readable label
// for entries whose source is a button or menu action.
const MetadataButtonLabel = "button_label"

// KnowledgeEntry represents a single question/answer unit in the knowledge
// base. Entries are immutable once loaded; new entries are added only
// through the store's append operation.
type KnowledgeEntry struct {
	ID       string            `yaml:"id"`
	Question string            `yaml:"question"`
	Answer   string            `yaml:"answer"`
	Tags     []string          `yaml:"tags,omitempty"`
	Source   SourceKind        `yaml:"source"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// ButtonLabel returns the human-readable button label for button/menu
// entries, falling back to the question text when no label is set.
func (e *KnowledgeEntry) ButtonLabel() string {
	if label, ok := e.Metadata[MetadataButtonLabel]; ok && label != "" {
		return label
	}
	return e.Question
}

// HasTag reports whether the entry carries the given tag.
func (e *KnowledgeEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// KnowledgeBase is the persisted collection of all knowledge entries.
type KnowledgeBase struct {
	Version string           `yaml:"version"`
	Entries []KnowledgeEntry `yaml:"entries"`
}

// MatchResult is the transient outcome of a single match lookup.
type MatchResult struct {
	Entry       *KnowledgeEntry
	Confidence  float64
	ButtonClick bool
	Fuzzy       bool
}

// Matched reports whether the lookup produced an entry.
func (r MatchResult) Matched() bool {
	return r.Entry != nil
}

// Reply is the engine's answer envelope returned to the calling transport
// layer. Text may embed lightweight markup the caller renders as-is.
type Reply struct {
	Text              string
	AwaitingSelection bool
}
