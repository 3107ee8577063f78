package core

import (
	"github.com/kbdesk/kbdesk/pkg/models"
)

// defaultSynonyms maps canonical stems to inflectional variants and
// near-synonyms. Hand-curated and language-specific; swappable data, not
// an algorithmic requirement.
var defaultSynonyms = map[string][]string{
	"invoice":  {"invoices", "invoicing", "bill", "billing"},
	"create":   {"creating", "creation", "make", "making", "add", "adding", "new"},
	"report":   {"reports", "reporting", "statement"},
	"payment":  {"payments", "pay", "paying", "paid"},
	"supplier": {"suppliers", "vendor", "vendors"},
	"customer": {"customers", "client", "clients"},
	"delete":   {"deleting", "deletion", "remove", "removing"},
	"user":     {"users", "account", "accounts", "login"},
	"setting":  {"settings", "configure", "configuration", "setup"},
	"document": {"documents", "doc", "docs"},
	"order":    {"orders", "ordering"},
	"shipping": {"ship", "shipment", "shipments", "delivery", "deliveries"},
	"stock":    {"stocks", "inventory", "warehouse"},
	"export":   {"exports", "exporting", "download"},
	"import":   {"imports", "importing", "upload"},
}

// KnowledgeIndex is an immutable snapshot of the loaded knowledge base:
// the entry collection, an inverted keyword index, a phonetic-code index,
// and the synonym-expansion table. A snapshot is built wholesale and never
// mutated, so readers may share it freely; the engine swaps in a fresh
// snapshot after every knowledge-base change.
type KnowledgeIndex struct {
	entries  []models.KnowledgeEntry
	keywords map[string][]*models.KnowledgeEntry
	phonetic map[string][]*models.KnowledgeEntry
	synonyms map[string][]string
}

// BuildIndex normalizes every entry's question, extracts its keywords, and
// indexes the entry under each keyword and its phonetic code. An entry may
// appear under multiple keys; within one key the order of first appearance
// is kept.
func BuildIndex(entries []models.KnowledgeEntry, normalizer *Normalizer) *KnowledgeIndex {
	idx := &KnowledgeIndex{
		entries:  entries,
		keywords: make(map[string][]*models.KnowledgeEntry),
		phonetic: make(map[string][]*models.KnowledgeEntry),
		synonyms: defaultSynonyms,
	}

	for i := range idx.entries {
		entry := &idx.entries[i]
		seen := make(map[string]struct{})
		for _, kw := range normalizer.ExtractKeywords(entry.Question) {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			idx.keywords[kw] = append(idx.keywords[kw], entry)
			if code := PhoneticCode(kw); code != "" {
				idx.phonetic[code] = append(idx.phonetic[code], entry)
			}
		}
	}

	return idx
}

// Entries returns the full entry collection backing the index.
func (idx *KnowledgeIndex) Entries() []models.KnowledgeEntry {
	return idx.entries
}

// Size returns the number of indexed entries.
func (idx *KnowledgeIndex) Size() int {
	return len(idx.entries)
}

// ExpandKeywords widens a keyword list with synonym-table variants in both
// directions (stem to variant and variant to stem). The original keywords
// always lead the result.
func (idx *KnowledgeIndex) ExpandKeywords(keywords []string) []string {
	expanded := make([]string, 0, len(keywords)*2)
	seen := make(map[string]struct{}, len(keywords)*2)
	add := func(kw string) {
		if _, dup := seen[kw]; !dup {
			seen[kw] = struct{}{}
			expanded = append(expanded, kw)
		}
	}

	for _, kw := range keywords {
		add(kw)
	}
	for _, kw := range keywords {
		if variants, ok := idx.synonyms[kw]; ok {
			for _, v := range variants {
				add(v)
			}
		}
		for stem, variants := range idx.synonyms {
			for _, v := range variants {
				if v == kw {
					add(stem)
					break
				}
			}
		}
	}

	return expanded
}

// Candidates gathers the entries indexed under any of the given keywords,
// their phonetic codes, or a tolerant keyword variant. Order of first
// appearance is preserved and entries are deduplicated.
func (idx *KnowledgeIndex) Candidates(keywords []string) []*models.KnowledgeEntry {
	var out []*models.KnowledgeEntry
	seen := make(map[*models.KnowledgeEntry]struct{})
	add := func(entries []*models.KnowledgeEntry) {
		for _, e := range entries {
			if _, dup := seen[e]; !dup {
				seen[e] = struct{}{}
				out = append(out, e)
			}
		}
	}

	for _, kw := range keywords {
		add(idx.keywords[kw])
		if code := PhoneticCode(kw); code != "" {
			add(idx.phonetic[code])
		}
	}

	// Widen with typo-tolerant keyword matching only when direct and
	// phonetic lookups produced nothing.
	if len(out) == 0 {
		for _, kw := range keywords {
			for indexed, entries := range idx.keywords {
				if Tolerant(kw, indexed) {
					add(entries)
				}
			}
		}
	}

	return out
}
