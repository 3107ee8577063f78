package core

import (
	"strings"
	"testing"
	"unicode"

	"pgregory.net/rapid"
)

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()

	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input")

		once := n.Normalize(input)
		twice := n.Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", input, once, twice)
		}
	})
}

func TestNormalizeOutputShape(t *testing.T) {
	n := NewNormalizer()

	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input")

		out := n.Normalize(input)
		if strings.Contains(out, "  ") {
			t.Fatalf("output contains a double space: %q", out)
		}
		if out != strings.TrimSpace(out) {
			t.Fatalf("output not trimmed: %q", out)
		}
		for _, r := range out {
			if r == ' ' {
				continue
			}
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				t.Fatalf("output contains non-alphanumeric rune %q in %q", r, out)
			}
			if unicode.IsUpper(r) {
				t.Fatalf("output contains upper-case rune %q in %q", r, out)
			}
		}
	})
}

func TestKeywordsSubsetOfNormalized(t *testing.T) {
	n := NewNormalizer()

	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input")

		normalized := n.Normalize(input)
		tokens := make(map[string]struct{})
		for _, tok := range strings.Fields(normalized) {
			tokens[tok] = struct{}{}
		}
		for _, kw := range n.Keywords(normalized) {
			if _, ok := tokens[kw]; !ok {
				t.Fatalf("keyword %q not a token of %q", kw, normalized)
			}
			if len([]rune(kw)) < minKeywordLen {
				t.Fatalf("keyword %q shorter than minimum", kw)
			}
		}
	})
}
