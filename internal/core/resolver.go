package core

import (
	"strings"

	"github.com/kbdesk/kbdesk/pkg/models"
)

// MatchResolver finds the best knowledge entry for a query against one
// immutable index snapshot. It is read-only and safe for concurrent use.
type MatchResolver struct {
	cfg        EngineConfig
	normalizer *Normalizer
	scorer     *Scorer
}

// NewMatchResolver creates a resolver with the given thresholds.
func NewMatchResolver(cfg EngineConfig, normalizer *Normalizer) *MatchResolver {
	return &MatchResolver{
		cfg:        cfg,
		normalizer: normalizer,
		scorer:     NewScorer(cfg),
	}
}

// FindBestMatch resolves a free-text query to the highest-confidence
// entry, or an unmatched result when nothing clears the match threshold.
// Candidate entries come from the keyword index; when the index yields
// nothing the full collection is scanned so rare vocabulary still has a
// chance. A secondary loose pass at a reduced threshold catches queries
// whose phrasing diverges but whose keywords appear verbatim in an entry.
func (r *MatchResolver) FindBestMatch(idx *KnowledgeIndex, query string) models.MatchResult {
	normalized := r.normalizer.Normalize(query)
	if normalized == "" {
		return models.MatchResult{}
	}
	keywords := r.normalizer.Keywords(normalized)
	expanded := idx.ExpandKeywords(keywords)

	candidates := idx.Candidates(expanded)
	if len(candidates) == 0 {
		entries := idx.Entries()
		candidates = make([]*models.KnowledgeEntry, len(entries))
		for i := range entries {
			candidates[i] = &entries[i]
		}
	}

	best := models.MatchResult{}
	for _, entry := range candidates {
		confidence := r.confidence(normalized, keywords, entry)
		if confidence > best.Confidence {
			best = models.MatchResult{Entry: entry, Confidence: confidence, Fuzzy: true}
		}
	}

	if best.Confidence >= r.cfg.MatchThreshold {
		return best
	}

	// Loose pass: enough query keywords appearing verbatim inside an
	// entry question is accepted at a reduced threshold. The reduced
	// threshold applies only to loose-pass results; a primary candidate
	// below the match threshold stays unmatched.
	if loose := r.loosePass(idx, keywords); loose.Entry != nil &&
		loose.Confidence >= r.cfg.MatchThreshold*r.cfg.SecondaryPassFactor {
		return loose
	}
	return models.MatchResult{}
}

// confidence blends the character-level ratio with keyword overlap and a
// per-keyword substring bonus.
func (r *MatchResolver) confidence(normalized string, keywords []string, entry *models.KnowledgeEntry) float64 {
	entryNormalized := r.normalizer.Normalize(entry.Question)
	ratio := r.scorer.Ratio(normalized, entryNormalized)

	entryKeywords := r.normalizer.Keywords(entryNormalized)
	overlap := keywordOverlap(keywords, entryKeywords)

	bonus := 0.0
	for _, kw := range keywords {
		if strings.Contains(entryNormalized, kw) {
			bonus += r.cfg.KeywordBonus
		}
	}
	if bonus > r.cfg.KeywordBonusCap {
		bonus = r.cfg.KeywordBonusCap
	}

	return clamp01(r.cfg.ConfidenceRatioWeight*ratio + r.cfg.ConfidenceKeywordWeight*overlap + bonus)
}

func keywordOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	set := make(map[string]struct{}, len(b))
	for _, kw := range b {
		set[kw] = struct{}{}
	}
	shared := 0
	seen := make(map[string]struct{}, len(a))
	for _, kw := range a {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		if _, ok := set[kw]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(seen))
}

func (r *MatchResolver) loosePass(idx *KnowledgeIndex, keywords []string) models.MatchResult {
	if len(keywords) < 2 {
		return models.MatchResult{}
	}
	entries := idx.Entries()
	best := models.MatchResult{}
	for i := range entries {
		entryNormalized := r.normalizer.Normalize(entries[i].Question)
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(entryNormalized, kw) {
				hits++
			}
		}
		if hits < 2 {
			continue
		}
		confidence := clamp01(float64(hits) / float64(len(keywords)) * 0.75)
		if confidence > best.Confidence {
			best = models.MatchResult{Entry: &entries[i], Confidence: confidence, Fuzzy: true}
		}
	}
	return best
}

// FindByExactQuestion returns the entry whose normalized question equals
// the normalized query, or nil. An empty kind matches every source kind.
// Exact hits bypass fuzzy scoring entirely.
func (r *MatchResolver) FindByExactQuestion(idx *KnowledgeIndex, query string, kind models.SourceKind) *models.KnowledgeEntry {
	normalized := r.normalizer.Normalize(query)
	if normalized == "" {
		return nil
	}
	entries := idx.Entries()
	for i := range entries {
		if kind != "" && entries[i].Source != kind {
			continue
		}
		if r.normalizer.Normalize(entries[i].Question) == normalized {
			return &entries[i]
		}
	}
	return nil
}

// ResolveButtonClick maps a button or menu payload to an entry using a
// three-step fallback chain: exact label match among entries of the named
// source kind, then fuzzy match restricted to that kind at a permissive
// threshold, then fuzzy match over the whole collection at a stricter one.
func (r *MatchResolver) ResolveButtonClick(idx *KnowledgeIndex, kind, payload string) models.MatchResult {
	normalized := r.normalizer.Normalize(payload)
	if normalized == "" {
		return models.MatchResult{}
	}
	source := models.SourceKind(kind)
	entries := idx.Entries()

	for i := range entries {
		if entries[i].Source != source {
			continue
		}
		if r.normalizer.Normalize(entries[i].ButtonLabel()) == normalized {
			return models.MatchResult{Entry: &entries[i], Confidence: 1.0, ButtonClick: true}
		}
	}

	best := models.MatchResult{}
	for i := range entries {
		if entries[i].Source != source {
			continue
		}
		confidence := r.buttonConfidence(normalized, &entries[i])
		if confidence > best.Confidence {
			best = models.MatchResult{Entry: &entries[i], Confidence: confidence, ButtonClick: true, Fuzzy: true}
		}
	}
	if best.Confidence >= r.cfg.ButtonKindThreshold {
		return best
	}

	best = models.MatchResult{}
	for i := range entries {
		confidence := r.buttonConfidence(normalized, &entries[i])
		if confidence > best.Confidence {
			best = models.MatchResult{Entry: &entries[i], Confidence: confidence, ButtonClick: true, Fuzzy: true}
		}
	}
	if best.Confidence >= r.cfg.ButtonAnyThreshold {
		return best
	}
	return models.MatchResult{}
}

func (r *MatchResolver) buttonConfidence(normalizedPayload string, entry *models.KnowledgeEntry) float64 {
	normalizedLabel := r.normalizer.Normalize(entry.ButtonLabel())
	score := r.scorer.Ratio(normalizedPayload, normalizedLabel)
	if strings.Contains(normalizedLabel, normalizedPayload) ||
		strings.Contains(normalizedPayload, normalizedLabel) {
		score = clamp01(score + 0.2)
	}
	return score
}
