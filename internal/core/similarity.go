package core

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
	"github.com/pmezard/go-difflib/difflib"
)

// confusedLetters maps commonly mistyped or sound-alike letters to their
// frequent substitutes. Used only to widen candidate matching, never to
// replace the canonical token.
var confusedLetters = map[rune][]rune{
	'a': {'e', 'o'},
	'e': {'a', 'i'},
	'i': {'e', 'y'},
	'o': {'a', 'u'},
	'u': {'o'},
	'y': {'i'},
	'c': {'k', 's'},
	'k': {'c'},
	's': {'z', 'c'},
	'z': {'s'},
	'f': {'v'},
	'v': {'f', 'w'},
	'g': {'j'},
	'j': {'g'},
	'm': {'n'},
	'n': {'m'},
}

// jaroWinklerTolerance is the similarity above which two keywords are
// considered interchangeable during candidate retrieval.
const jaroWinklerTolerance = 0.94

// Scorer computes bounded similarity between normalized strings. It is
// read-only after construction and safe for concurrent use.
type Scorer struct {
	cfg EngineConfig
}

// NewScorer creates a Scorer with the given blend weights and floors.
func NewScorer(cfg EngineConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Ratio returns a similarity in [0,1] between two normalized strings,
// blending a character-level sequence alignment ratio, a token-overlap
// ratio, and a small bonus when the leading tokens start with the same
// letter. Phonetically equal leading tokens floor the result at the
// configured phonetic floor.
func (s *Scorer) Ratio(a, b string) float64 {
	if a == "" || b == "" {
		if a == b {
			return 1.0
		}
		return 0.0
	}
	if a == b {
		return 1.0
	}

	score := s.cfg.SequenceWeight * sequenceRatio(a, b)

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	score += s.cfg.TokenWeight * tokenOverlap(tokensA, tokensB)

	if len(tokensA) > 0 && len(tokensB) > 0 && tokensA[0][0] == tokensB[0][0] {
		score += s.cfg.FirstLetterBonus
	}

	// Phonetic equality of the leading tokens is a floor, not a bonus: it
	// can never lower an already-higher score.
	if len(tokensA) > 0 && len(tokensB) > 0 && score < s.cfg.PhoneticFloor {
		codeA := PhoneticCode(tokensA[0])
		if codeA != "" && codeA == PhoneticCode(tokensB[0]) {
			score = s.cfg.PhoneticFloor
		}
	}

	return clamp01(score)
}

// sequenceRatio is the difflib SequenceMatcher ratio over individual
// characters, the same measure the original matcher was built around.
func sequenceRatio(a, b string) float64 {
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// tokenOverlap is |tokens(a) ∩ tokens(b)| / max(|tokens(a)|, 1).
func tokenOverlap(tokensA, tokensB []string) float64 {
	if len(tokensA) == 0 {
		return 0.0
	}
	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}
	shared := 0
	for _, t := range tokensA {
		if _, ok := setB[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(tokensA))
}

// PhoneticCode returns the 4-character Soundex code for a word: first
// letter plus a consonant-class encoding of the rest, zero-padded or
// truncated to exactly four characters. Words producing no code (empty,
// non-alphabetic) yield "".
func PhoneticCode(word string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, word)
	if cleaned == "" {
		return ""
	}

	code := matchr.Soundex(cleaned)
	if code == "" {
		return ""
	}
	for len(code) < 4 {
		code += "0"
	}
	return code[:4]
}

// PhoneticallyEqual reports whether two words share the same non-empty
// phonetic code.
func PhoneticallyEqual(a, b string) bool {
	codeA := PhoneticCode(a)
	return codeA != "" && codeA == PhoneticCode(b)
}

// WordVariations returns the typo-tolerant variation set for a word: the
// word itself, single-character substitutions from the confused-letter
// table, every single-character deletion for words longer than three
// runes, and collapsed-doubled-letter variants.
func WordVariations(word string) map[string]struct{} {
	variations := map[string]struct{}{word: {}}
	runes := []rune(word)

	for i, r := range runes {
		for _, sub := range confusedLetters[r] {
			variant := make([]rune, len(runes))
			copy(variant, runes)
			variant[i] = sub
			variations[string(variant)] = struct{}{}
		}
	}

	if len(runes) > 3 {
		for i := range runes {
			variant := make([]rune, 0, len(runes)-1)
			variant = append(variant, runes[:i]...)
			variant = append(variant, runes[i+1:]...)
			variations[string(variant)] = struct{}{}
		}
	}

	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			variant := make([]rune, 0, len(runes)-1)
			variant = append(variant, runes[:i]...)
			variant = append(variant, runes[i+1:]...)
			variations[string(variant)] = struct{}{}
		}
	}

	return variations
}

// Tolerant reports whether two keywords are close enough to be treated as
// the same term during candidate retrieval: identical, within the
// variation set, one edit apart for longer words, or nearly identical by
// Jaro-Winkler.
func Tolerant(a, b string) bool {
	if a == b {
		return true
	}
	if _, ok := WordVariations(a)[b]; ok {
		return true
	}
	if len([]rune(a)) >= 5 && len([]rune(b)) >= 5 {
		if levenshtein.ComputeDistance(a, b) <= 1 {
			return true
		}
	}
	return matchr.JaroWinkler(a, b, false) >= jaroWinklerTolerance
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
