package core

import (
	"regexp"
	"strconv"
	"strings"
)

// IntentUnknown is the sentinel label returned when no intent reaches its
// own threshold.
const IntentUnknown = "unknown"

// Intent defines one classifiable intent: strong positive signals
// (primary), supporting signals (secondary), and disqualifying signals
// (negative), with a per-intent weight and acceptance threshold.
//
// Negative patterns are the disambiguation mechanism for near-opposite
// intents that share vocabulary: a negative hit can suppress an intent
// even when its primary patterns matched.
type Intent struct {
	Label     string
	Primary   []*regexp.Regexp
	Secondary []*regexp.Regexp
	Negative  []*regexp.Regexp
	Weight    float64
	Threshold float64
}

// defaultIntents is the curated intent table for the ERP help domain.
// Patterns run against normalized text.
var defaultIntents = []Intent{
	{
		Label: "create_invoice",
		Primary: compileAll(
			`\bcreate\b.*\binvoice`,
			`\bnew\b.*\binvoice`,
			`\binvoice\b.*\b(create|creating|raise)`,
		),
		Secondary: compileAll(
			`\binvoice`,
			`\bbilling\b`,
		),
		Negative: compileAll(
			`\b(delete|cancel|void)\b`,
		),
		Weight:    1.0,
		Threshold: 2.0,
	},
	{
		Label: "pay_supplier",
		Primary: compileAll(
			`\bpay\b.*\bsupplier`,
			`\bsupplier\b.*\bpayment`,
			`\bpayment\b.*\b(to|for)\b.*\b(supplier|vendor)`,
		),
		Secondary: compileAll(
			`\bpayment`,
			`\b(supplier|vendor)\b`,
		),
		Negative: compileAll(
			`\b(receive|received|from)\b.*\b(customer|client)`,
			`\bincoming\b`,
		),
		Weight:    1.0,
		Threshold: 2.0,
	},
	{
		Label: "record_customer_payment",
		Primary: compileAll(
			`\b(receive|record|register)\b.*\bpayment\b.*\bcustomer`,
			`\bpayment\b.*\bfrom\b.*\b(customer|client)`,
			`\bincoming\b.*\bpayment`,
		),
		Secondary: compileAll(
			`\bpayment`,
			`\b(customer|client)\b`,
		),
		Negative: compileAll(
			`\b(pay|outgoing)\b.*\b(supplier|vendor)`,
		),
		Weight:    1.0,
		Threshold: 2.0,
	},
	{
		Label: "view_report",
		Primary: compileAll(
			`\b(view|open|find|run)\b.*\breport`,
			`\breport\b.*\b(sales|profit|stock|period)`,
			`\bwhere\b.*\breport`,
		),
		Secondary: compileAll(
			`\breport`,
			`\b(sales|profit|turnover)\b`,
		),
		Negative: compileAll(
			`\b(export|download)\b`,
		),
		Weight:    1.0,
		Threshold: 2.0,
	},
	{
		Label: "manage_users",
		Primary: compileAll(
			`\b(add|create|set up|configure)\b.*\buser`,
			`\buser\b.*\b(permission|access|role)`,
		),
		Secondary: compileAll(
			`\b(user|account|login)\b`,
		),
		Negative: nil,
		Weight:    1.0,
		Threshold: 2.0,
	},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// IntentClassifier maps normalized text to a best-guess intent label with
// a confidence score in [0,1]. Read-only after construction.
type IntentClassifier struct {
	intents    []Intent
	normalizer *Normalizer
}

// NewIntentClassifier creates a classifier over the curated intent table.
func NewIntentClassifier(normalizer *Normalizer) *IntentClassifier {
	return &IntentClassifier{intents: defaultIntents, normalizer: normalizer}
}

// NewIntentClassifierWithTable creates a classifier over a custom table.
func NewIntentClassifierWithTable(normalizer *Normalizer, intents []Intent) *IntentClassifier {
	return &IntentClassifier{intents: intents, normalizer: normalizer}
}

// ClassifyWithConfidence scores every intent against the normalized text.
// Per intent: weight×2 per primary hit, weight×1 per secondary hit, minus
// weight×3 per negative hit, floored at zero and scaled by a match-ratio
// factor rewarding primary-heavy matches. The best intent wins only if its
// score reaches its own threshold; otherwise the sentinel unknown intent
// is returned with confidence derived from the best sub-threshold score.
func (c *IntentClassifier) ClassifyWithConfidence(text string) (string, float64) {
	normalized := c.normalizer.Normalize(text)
	if normalized == "" {
		return IntentUnknown, 0.0
	}

	bestLabel := IntentUnknown
	bestScore := 0.0
	bestThreshold := 1.0
	accepted := false

	for _, intent := range c.intents {
		primaryHits := countMatches(intent.Primary, normalized)
		secondaryHits := countMatches(intent.Secondary, normalized)
		negativeHits := countMatches(intent.Negative, normalized)

		score := intent.Weight*2*float64(primaryHits) +
			intent.Weight*float64(secondaryHits) -
			intent.Weight*3*float64(negativeHits)
		if score <= 0 {
			continue
		}

		// Reward matches dominated by strong signals over ones carried by
		// supporting vocabulary alone.
		totalHits := primaryHits + secondaryHits
		matchRatio := 0.5
		if totalHits > 0 {
			matchRatio = 0.5 + 0.5*float64(primaryHits)/float64(totalHits)
		}
		score *= matchRatio

		ok := score >= intent.Threshold
		if (ok && (!accepted || score > bestScore)) ||
			(!accepted && score > bestScore) {
			bestLabel = intent.Label
			bestScore = score
			bestThreshold = intent.Threshold
			accepted = accepted || ok
		}
	}

	if !accepted {
		confidence := 0.0
		if bestScore > 0 {
			confidence = clamp01(bestScore / (2 * bestThreshold))
		}
		return IntentUnknown, confidence
	}

	return bestLabel, clamp01(bestScore / (2 * bestThreshold))
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	hits := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			hits++
		}
	}
	return hits
}

// InputKind tags the canonical classification of one raw inbound message.
type InputKind int

const (
	// InputText is a plain free-text query.
	InputText InputKind = iota
	// InputCommand is a slash command such as /start or /help.
	InputCommand
	// InputButtonClick is an explicit or paraphrased button/menu action.
	InputButtonClick
	// InputSelection is a bare option number replying to a clarification.
	InputSelection
)

// Input is the tagged result of classifying a raw message. Exactly one of
// the payload fields is meaningful for each kind.
type Input struct {
	Kind InputKind
	// Command is the command name without the slash and Args is the rest
	// of the command line (InputCommand).
	Command string
	Args    string
	// SourceKind and Payload describe a button click (InputButtonClick).
	SourceKind string
	Payload    string
	// Selection is the chosen option number (InputSelection).
	Selection int
	// Text is the original trimmed message, valid for every kind.
	Text string
}

// buttonPhrases are natural-language paraphrases of a button or menu
// action from which the trailing payload is extracted.
var buttonPhrases = []struct {
	re   *regexp.Regexp
	kind string
}{
	{regexp.MustCompile(`(?i)^(?:i\s+)?click(?:ed)?\s+(?:on\s+)?the\s+(.+?)\s+button$`), "button"},
	{regexp.MustCompile(`(?i)^press(?:ed)?\s+the\s+(.+?)\s+button$`), "button"},
	{regexp.MustCompile(`(?i)^in\s+the\s+(.+?)\s+menu$`), "menu"},
	{regexp.MustCompile(`(?i)^open(?:ed)?\s+the\s+(.+?)\s+menu$`), "menu"},
}

// ClassifyInput performs the single canonical dispatch of a raw inbound
// message into command, button click, numeric selection, or plain text.
func ClassifyInput(raw string) Input {
	text := strings.TrimSpace(raw)
	input := Input{Kind: InputText, Text: text}
	if text == "" {
		return input
	}

	if strings.HasPrefix(text, "/") {
		if rest := strings.TrimSpace(text[1:]); rest != "" {
			fields := strings.Fields(rest)
			input.Kind = InputCommand
			input.Command = strings.ToLower(fields[0])
			input.Args = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
			return input
		}
	}

	lower := strings.ToLower(text)
	for _, prefix := range []string{"button:", "menu:"} {
		if strings.HasPrefix(lower, prefix) {
			payload := strings.TrimSpace(text[len(prefix):])
			if payload != "" {
				input.Kind = InputButtonClick
				input.SourceKind = strings.TrimSuffix(prefix, ":")
				input.Payload = payload
				return input
			}
		}
	}

	for _, phrase := range buttonPhrases {
		if m := phrase.re.FindStringSubmatch(text); m != nil {
			input.Kind = InputButtonClick
			input.SourceKind = phrase.kind
			input.Payload = strings.TrimSpace(m[1])
			return input
		}
	}

	if n, err := strconv.Atoi(text); err == nil && n > 0 {
		input.Kind = InputSelection
		input.Selection = n
		return input
	}

	return input
}
