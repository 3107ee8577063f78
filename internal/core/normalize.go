package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes characters and removes combining marks so that
// accented input ("naïve") matches its plain spelling.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// defaultStopWords is the fixed set of English function words dropped
// during keyword extraction. Curated and swappable, not an algorithmic
// requirement.
var defaultStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "into": {},
	"that": {}, "this": {}, "these": {}, "those": {}, "what": {}, "which": {},
	"how": {}, "can": {}, "could": {}, "would": {}, "should": {}, "will": {},
	"you": {}, "your": {}, "our": {}, "have": {}, "has": {}, "are": {},
	"was": {}, "were": {}, "does": {}, "did": {}, "not": {}, "but": {},
	"about": {}, "where": {}, "when": {}, "who": {}, "why": {}, "need": {},
	"want": {}, "please": {}, "all": {}, "any": {}, "out": {}, "get": {},
}

// minKeywordLen is the shortest token kept as a keyword.
const minKeywordLen = 3

// Normalizer canonicalizes raw input text and extracts keyword tokens.
// The zero-value stop-word set is the default English table; a custom set
// can be supplied for other languages.
type Normalizer struct {
	stopWords map[string]struct{}
}

// NewNormalizer creates a Normalizer with the default stop-word set.
func NewNormalizer() *Normalizer {
	return &Normalizer{stopWords: defaultStopWords}
}

// NewNormalizerWithStopWords creates a Normalizer with a custom stop-word
// list.
func NewNormalizerWithStopWords(words []string) *Normalizer {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopWords: set}
}

// Normalize lower-cases the text, folds accents, replaces every
// non-alphanumeric rune with a space, collapses whitespace runs, and
// trims. It is deterministic, total, and idempotent; empty input yields
// empty output.
func (n *Normalizer) Normalize(text string) string {
	lowered := strings.ToLower(text)
	if folded, _, err := transform.String(stripAccents, lowered); err == nil {
		lowered = folded
	}

	var b strings.Builder
	b.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Keywords splits normalized text on whitespace and drops stop words and
// tokens shorter than three runes. Order follows original appearance;
// duplicates are retained.
func (n *Normalizer) Keywords(normalized string) []string {
	var keywords []string
	for _, token := range strings.Fields(normalized) {
		if len([]rune(token)) < minKeywordLen {
			continue
		}
		if _, stop := n.stopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

// ExtractKeywords normalizes raw text and returns its keywords in one step.
func (n *Normalizer) ExtractKeywords(text string) []string {
	return n.Keywords(n.Normalize(text))
}
