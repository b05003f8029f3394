package prompt

import (
	"strings"
	"testing"

	"github.com/recouphq/voicebridge/internal/call"
	"github.com/recouphq/voicebridge/internal/compliance"
)

func testContext() call.Context {
	return call.Context{
		InvoiceID:        "inv-1",
		InvoiceReference: "INV-100",
		Amount:           500.00,
		DueDate:          "2024-01-01",
		DaysOverdue:      20,
		ClientName:       "Jane Doe",
		BusinessName:     "Acme Ltd",
	}
}

func newTestBuilder() *Builder {
	return NewBuilder("FRN-123456", compliance.NewKeywordFilter())
}

func TestSystemPrompt_ContainsContextFigures(t *testing.T) {
	out := newTestBuilder().SystemPrompt(testContext())

	for _, want := range []string{"INV-100", "£500.00", "Days overdue: 20", "Jane Doe", "Acme Ltd", "2024-01-01", "FRN-123456"} {
		if !strings.Contains(out, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, out)
		}
	}
}

func TestSystemPrompt_ContainsMandatorySentences(t *testing.T) {
	out := newTestBuilder().SystemPrompt(testContext())

	if !strings.Contains(out, "This call is being recorded") {
		t.Fatal("system prompt missing recording disclosure")
	}
	if !strings.Contains(out, "right to dispute this debt") {
		t.Fatal("system prompt missing debtor rights sentence")
	}
}

func TestPaymentPlanOffer_Figures(t *testing.T) {
	out := newTestBuilder().PaymentPlanOffer(testContext())

	if !strings.Contains(out, "£125.00") {
		t.Fatalf("expected weekly figure 125.00 in %q", out)
	}
	if !strings.Contains(out, "£166.67") {
		t.Fatalf("expected monthly figure 166.67 in %q", out)
	}
}

func TestDisputeAcknowledgment(t *testing.T) {
	out := newTestBuilder().DisputeAcknowledgment(testContext())

	if !strings.Contains(out, "14 days") {
		t.Fatalf("expected 14-day evidence window in %q", out)
	}
	if !strings.Contains(out, "INV-100") {
		t.Fatalf("expected invoice reference in %q", out)
	}
}

func TestScriptedLines_PassComplianceFilter(t *testing.T) {
	b := newTestBuilder()
	f := compliance.NewKeywordFilter()
	ctx := testContext()

	for name, line := range map[string]string{
		"opening":       b.OpeningLine(ctx),
		"plan":          b.PaymentPlanOffer(ctx),
		"dispute":       b.DisputeAcknowledgment(ctx),
		"cease_contact": b.CeaseContactAcknowledgment(ctx),
	} {
		if !f.IsCompliant(line) {
			t.Fatalf("%s script failed compliance: %q", name, line)
		}
	}
}
