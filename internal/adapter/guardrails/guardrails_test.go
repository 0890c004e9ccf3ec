package guardrails

import (
	"strings"
	"testing"
)

var substantiveDoc = strings.Repeat("The startup funding scheme provides seed capital. ", 4)

func TestValidateRetrieval(t *testing.T) {
	g := New()

	tests := []struct {
		name string
		docs []string
		want bool
	}{
		{"no documents", nil, false},
		{"empty documents", []string{"", ""}, false},
		{"all too short", []string{"short text", "tiny"}, false},
		{"one substantive", []string{"short", substantiveDoc}, true},
		{"exactly at threshold", []string{strings.Repeat("a", 80)}, false},
		{"just over threshold", []string{strings.Repeat("a", 81)}, true},
		// Multi-byte scripts count characters, not bytes: 27 Tamil
		// characters occupy 81 bytes but stay far below the bar.
		{"short tamil passage", []string{strings.Repeat("த", 27)}, false},
		{"substantive tamil passage", []string{strings.Repeat("த", 81)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidateRetrieval(tt.docs); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValidateAnswer(t *testing.T) {
	g := New()

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"empty", "", false},
		{"blank", "   \n", false},
		{"grounded answer", "The SISFS scheme provides up to 50 lakh in seed funding.", true},
		{"hedging i think", "I think the answer is 50 lakh.", false},
		{"hedging maybe", "Maybe it covers incubators too.", false},
		{"hedging probably", "It probably applies to registered startups.", false},
		{"hedging case insensitive", "It MIGHT BE available for DPIIT startups.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidateAnswer(tt.answer); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFinalGate(t *testing.T) {
	g := New()

	if g.FinalGate(nil, "A perfectly confident answer.") {
		t.Error("expected gate to reject with no evidence")
	}
	if g.FinalGate([]string{substantiveDoc}, "I think maybe it's 5 lakh.") {
		t.Error("expected gate to reject a hedging answer")
	}
	if !g.FinalGate([]string{substantiveDoc}, "The scheme grants 5 lakh to eligible startups.") {
		t.Error("expected gate to pass good evidence and answer")
	}
}

func TestFallbackResponse(t *testing.T) {
	g := New()

	fallback := g.FallbackResponse()
	if fallback == "" {
		t.Fatal("expected non-empty fallback")
	}
	if !strings.Contains(fallback, "does not provide reliable information") {
		t.Errorf("unexpected fallback text: %q", fallback)
	}
	// The fallback itself must pass the answer gate.
	if !g.ValidateAnswer(fallback) {
		t.Error("expected fallback to pass answer validation")
	}
}
