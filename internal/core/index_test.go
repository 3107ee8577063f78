package core

import (
	"testing"

	"github.com/kbdesk/kbdesk/pkg/models"
)

func testEntries() []models.KnowledgeEntry {
	return []models.KnowledgeEntry{
		{
			ID:       "KB-00001",
			Question: "how to create an invoice",
			Answer:   "Open Sales, press New Invoice, fill in the customer and lines.",
			Tags:     []string{"invoice", "sales"},
			Source:   models.SourceManual,
		},
		{
			ID:       "KB-00002",
			Question: "how to cancel an invoice",
			Answer:   "Open the invoice and press Void.",
			Tags:     []string{"invoice"},
			Source:   models.SourceManual,
		},
		{
			ID:       "KB-00003",
			Question: "where is the sales report",
			Answer:   "Reports > Sales > Summary.",
			Tags:     []string{"report", "sales"},
			Source:   models.SourceManual,
		},
		{
			ID:       "KB-00004",
			Question: "Invoices",
			Answer:   "The Invoices section lists all issued invoices.",
			Tags:     []string{"invoice"},
			Source:   models.SourceButton,
			Metadata: map[string]string{models.MetadataButtonLabel: "Invoices"},
		},
	}
}

func TestBuildIndex(t *testing.T) {
	idx := BuildIndex(testEntries(), NewNormalizer())

	if idx.Size() != 4 {
		t.Fatalf("Size = %d, want 4", idx.Size())
	}

	candidates := idx.Candidates([]string{"invoice"})
	if len(candidates) < 2 {
		t.Fatalf("Candidates(invoice) = %d entries, want at least 2", len(candidates))
	}
	for _, c := range candidates {
		found := false
		for _, tag := range c.Tags {
			if tag == "invoice" {
				found = true
			}
		}
		if !found {
			t.Errorf("candidate %s does not carry the invoice tag", c.ID)
		}
	}
}

func TestCandidatesPhoneticLookup(t *testing.T) {
	idx := BuildIndex(testEntries(), NewNormalizer())

	// "invoise" shares the Soundex code with "invoice".
	candidates := idx.Candidates([]string{"invoise"})
	if len(candidates) == 0 {
		t.Fatal("phonetic lookup found no candidates for invoise")
	}
}

func TestCandidatesTolerantFallback(t *testing.T) {
	idx := BuildIndex(testEntries(), NewNormalizer())

	// One edit away from "report"; neither the keyword nor the phonetic
	// index need contain it for the fallback scan to find it.
	candidates := idx.Candidates([]string{"reoprt"})
	if len(candidates) == 0 {
		t.Fatal("tolerant fallback found no candidates for reoprt")
	}
}

func TestCandidatesUnknownKeyword(t *testing.T) {
	idx := BuildIndex(testEntries(), NewNormalizer())

	if got := idx.Candidates([]string{"zzzqqq"}); len(got) != 0 {
		t.Fatalf("Candidates(zzzqqq) = %d entries, want 0", len(got))
	}
}

func TestExpandKeywords(t *testing.T) {
	idx := BuildIndex(nil, NewNormalizer())

	expanded := idx.ExpandKeywords([]string{"bill"})
	foundStem := false
	for _, kw := range expanded {
		if kw == "invoice" {
			foundStem = true
		}
	}
	if !foundStem {
		t.Errorf("ExpandKeywords(bill) = %v, want it to include invoice", expanded)
	}
	if expanded[0] != "bill" {
		t.Errorf("original keyword should lead the expansion, got %v", expanded)
	}

	expanded = idx.ExpandKeywords([]string{"invoice"})
	foundVariant := false
	for _, kw := range expanded {
		if kw == "invoices" {
			foundVariant = true
		}
	}
	if !foundVariant {
		t.Errorf("ExpandKeywords(invoice) = %v, want it to include invoices", expanded)
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := BuildIndex(nil, NewNormalizer())

	if idx.Size() != 0 {
		t.Errorf("Size = %d, want 0", idx.Size())
	}
	if got := idx.Candidates([]string{"invoice"}); len(got) != 0 {
		t.Errorf("Candidates on empty index = %d entries, want 0", len(got))
	}
}
