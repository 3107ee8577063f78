package core

import "testing"

func TestClassifyWithConfidence(t *testing.T) {
	c := NewIntentClassifier(NewNormalizer())

	tests := []struct {
		name string
		text string
		want string
	}{
		{"create invoice", "How do I create an invoice?", "create_invoice"},
		{"pay supplier", "how do i pay a supplier", "pay_supplier"},
		{"customer payment", "record a payment received from a customer", "record_customer_payment"},
		{"view report", "where can I view the sales report", "view_report"},
		{"manage users", "add a user with admin permissions", "manage_users"},
		{"unrelated", "the weather is nice today", IntentUnknown},
		{"empty", "", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, confidence := c.ClassifyWithConfidence(tt.text)
			if label != tt.want {
				t.Errorf("ClassifyWithConfidence(%q) = %q (%.2f), want %q", tt.text, label, confidence, tt.want)
			}
			if confidence < 0.0 || confidence > 1.0 {
				t.Errorf("confidence %v out of [0,1]", confidence)
			}
			if label != IntentUnknown && confidence == 0.0 {
				t.Errorf("accepted intent %q with zero confidence", label)
			}
		})
	}
}

func TestClassifyNegativePatternsSuppressOppositeIntent(t *testing.T) {
	c := NewIntentClassifier(NewNormalizer())

	// Shares payment vocabulary with pay_supplier, but the "from a
	// customer" negative pattern must keep the outgoing-payment intent
	// from winning.
	label, _ := c.ClassifyWithConfidence("how do I register a payment from a client")
	if label == "pay_supplier" {
		t.Fatalf("negative pattern failed to suppress pay_supplier")
	}
	if label != "record_customer_payment" {
		t.Fatalf("ClassifyWithConfidence = %q, want record_customer_payment", label)
	}
}

func TestClassifyUnknownKeepsSubThresholdConfidence(t *testing.T) {
	c := NewIntentClassifier(NewNormalizer())

	// Mentions billing only, not enough for create_invoice to clear its
	// threshold, but the confidence should reflect the partial signal.
	label, confidence := c.ClassifyWithConfidence("a question about billing")
	if label != IntentUnknown {
		t.Fatalf("ClassifyWithConfidence = %q, want %q", label, IntentUnknown)
	}
	if confidence <= 0.0 {
		t.Fatalf("confidence = %v, want > 0 for a partial signal", confidence)
	}
}

func TestClassifyInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Input
	}{
		{"plain text", "how do I create an invoice", Input{Kind: InputText, Text: "how do I create an invoice"}},
		{"command", "/start", Input{Kind: InputCommand, Command: "start", Text: "/start"}},
		{"command with args", "/help me please", Input{Kind: InputCommand, Command: "help", Args: "me please", Text: "/help me please"}},
		{"learn command", "/learn q | a", Input{Kind: InputCommand, Command: "learn", Args: "q | a", Text: "/learn q | a"}},
		{"button prefix", "button:invoices", Input{Kind: InputButtonClick, SourceKind: "button", Payload: "invoices", Text: "button:invoices"}},
		{"menu prefix", "menu: Reports", Input{Kind: InputButtonClick, SourceKind: "menu", Payload: "Reports", Text: "menu: Reports"}},
		{"button paraphrase", "I clicked the Invoices button", Input{Kind: InputButtonClick, SourceKind: "button", Payload: "Invoices", Text: "I clicked the Invoices button"}},
		{"menu paraphrase", "in the Reports menu", Input{Kind: InputButtonClick, SourceKind: "menu", Payload: "Reports", Text: "in the Reports menu"}},
		{"selection", "2", Input{Kind: InputSelection, Selection: 2, Text: "2"}},
		{"padded selection", "  3  ", Input{Kind: InputSelection, Selection: 3, Text: "3"}},
		{"zero is text", "0", Input{Kind: InputText, Text: "0"}},
		{"negative is text", "-1", Input{Kind: InputText, Text: "-1"}},
		{"empty button payload is text", "button:", Input{Kind: InputText, Text: "button:"}},
		{"bare slash is text", "/", Input{Kind: InputText, Text: "/"}},
		{"empty", "", Input{Kind: InputText, Text: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyInput(tt.raw)
			if got != tt.want {
				t.Errorf("ClassifyInput(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
