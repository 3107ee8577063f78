package core

import (
	"testing"

	"pgregory.net/rapid"
)

func TestRatioBoundsAndReflexivity(t *testing.T) {
	s := NewScorer(DefaultEngineConfig())
	n := NewNormalizer()

	rapid.Check(t, func(t *rapid.T) {
		a := n.Normalize(rapid.String().Draw(t, "a"))
		b := n.Normalize(rapid.String().Draw(t, "b"))

		got := s.Ratio(a, b)
		if got < 0.0 || got > 1.0 {
			t.Fatalf("Ratio(%q, %q) = %v, out of [0,1]", a, b, got)
		}

		if self := s.Ratio(a, a); self != 1.0 {
			t.Fatalf("Ratio(%q, %q) = %v, want 1.0", a, a, self)
		}
	})
}

func TestPhoneticCodeShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,12}`).Draw(t, "word")

		code := PhoneticCode(word)
		if code == "" {
			return
		}
		if len(code) != 4 {
			t.Fatalf("PhoneticCode(%q) = %q, want 4 characters", word, code)
		}
		if code != PhoneticCode(word) {
			t.Fatalf("PhoneticCode(%q) not deterministic", word)
		}
	})
}

func TestWordVariationsContainWord(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "word")

		variations := WordVariations(word)
		if _, ok := variations[word]; !ok {
			t.Fatalf("WordVariations(%q) missing the word itself", word)
		}
		for v := range variations {
			if !Tolerant(word, v) {
				t.Fatalf("variation %q of %q not accepted by Tolerant", v, word)
			}
		}
	})
}
