package core

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "How Do I Create An Invoice", "how do i create an invoice"},
		{"strips punctuation", "create invoice?!", "create invoice"},
		{"collapses whitespace", "  create    invoice  ", "create invoice"},
		{"folds accents", "naïve café", "naive cafe"},
		{"keeps digits", "form 1099", "form 1099"},
		{"empty input", "", ""},
		{"only punctuation", "?!...", ""},
		{"tabs and newlines", "create\tan\ninvoice", "create an invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"drops stop words", "how can i create the invoice", []string{"create", "invoice"}},
		{"drops short tokens", "go to my tax report", []string{"tax", "report"}},
		{"keeps order and duplicates", "invoice for invoice", []string{"invoice", "invoice"}},
		{"empty input", "", nil},
		{"all stop words", "how can you", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Keywords(n.Normalize(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	n := NewNormalizer()

	got := n.ExtractKeywords("How do I create an INVOICE?")
	want := []string{"create", "invoice"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}
}

func TestNormalizerWithCustomStopWords(t *testing.T) {
	n := NewNormalizerWithStopWords([]string{"invoice"})

	got := n.ExtractKeywords("create invoice report")
	want := []string{"create", "report"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords with custom stop words = %v, want %v", got, want)
	}
}
