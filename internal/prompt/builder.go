package prompt

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/recouphq/voicebridge/internal/call"
	"github.com/recouphq/voicebridge/internal/compliance"
)

const (
	recordingDisclosure = "This call is being recorded for compliance and training purposes."
	debtorRights        = "You have the right to dispute this debt, the right to request that contact ceases, and the right to propose a payment plan."
	evidenceWindowDays  = 14
)

// Builder assembles the call's system instructions and the scripted
// sub-dialogues. It guarantees compliant content; it never decides when a
// script is used.
type Builder struct {
	firmReference string
	filter        compliance.Filter
}

func NewBuilder(firmReference string, filter compliance.Filter) *Builder {
	return &Builder{firmReference: firmReference, filter: filter}
}

// SystemPrompt builds the directive block sent as the speech model's
// session instructions. The structure is fixed: identification and
// recording disclosure first, then prohibited behaviors, then debtor
// rights, then the invoice figures verbatim.
func (b *Builder) SystemPrompt(ctx call.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a professional payment assistant calling on behalf of %s (FCA firm reference %s).\n\n",
		ctx.BusinessName, b.firmReference)

	sb.WriteString("MANDATORY CALL OPENING:\n")
	fmt.Fprintf(&sb, "Begin every call by identifying yourself as calling on behalf of %s about invoice %s. ",
		ctx.BusinessName, ctx.InvoiceReference)
	sb.WriteString(recordingDisclosure + "\n\n")

	sb.WriteString("PROHIBITED BEHAVIOUR (CONC 7.3):\n")
	sb.WriteString("- Never threaten, intimidate, or pressure the caller.\n")
	sb.WriteString("- Never ignore a request to cease contact; acknowledge it and end the call.\n")
	sb.WriteString("- Never suggest contact outside 8am-9pm Monday to Saturday.\n")
	sb.WriteString("- Never reference legal proceedings, enforcement agents, or credit records.\n")
	sb.WriteString("- Never invent urgency or consequences.\n\n")

	sb.WriteString("DEBTOR RIGHTS (state if relevant, always honour):\n")
	sb.WriteString(debtorRights + "\n\n")

	sb.WriteString("CALL CONTEXT:\n")
	fmt.Fprintf(&sb, "- Debtor: %s\n", ctx.ClientName)
	fmt.Fprintf(&sb, "- Invoice reference: %s\n", ctx.InvoiceReference)
	fmt.Fprintf(&sb, "- Amount owed: £%.2f\n", ctx.Amount)
	fmt.Fprintf(&sb, "- Original due date: %s\n", ctx.DueDate)
	fmt.Fprintf(&sb, "- Days overdue: %d\n\n", ctx.DaysOverdue)

	sb.WriteString("Be polite, professional and empathetic. Keep responses short and conversational. ")
	sb.WriteString("If the debtor disputes the debt, stop collection and explain the dispute process. ")
	sb.WriteString("If they agree to pay or to a plan, confirm the exact amount and date back to them.")
	return sb.String()
}

// OpeningLine is the scripted call opener.
func (b *Builder) OpeningLine(ctx call.Context) string {
	return b.compliant(fmt.Sprintf(
		"Hello, am I speaking with %s? I'm calling on behalf of %s regarding invoice %s for £%.2f, which is now %d days overdue. %s",
		ctx.ClientName, ctx.BusinessName, ctx.InvoiceReference, ctx.Amount, ctx.DaysOverdue, recordingDisclosure))
}

// PaymentPlanOffer computes weekly and monthly instalment figures from the
// outstanding amount: weekly over four payments, monthly over three.
func (b *Builder) PaymentPlanOffer(ctx call.Context) string {
	weekly := roundToPence(ctx.Amount / 4)
	monthly := roundToPence(ctx.Amount / 3)
	return b.compliant(fmt.Sprintf(
		"We can offer a payment plan for invoice %s: four weekly payments of £%.2f, or three monthly payments of £%.2f. Would either of those work for you?",
		ctx.InvoiceReference, weekly, monthly))
}

// DisputeAcknowledgment includes the written-evidence window.
func (b *Builder) DisputeAcknowledgment(ctx call.Context) string {
	return b.compliant(fmt.Sprintf(
		"I've noted that you dispute invoice %s. Collection activity is paused. Please send any written evidence within %d days and %s will review it.",
		ctx.InvoiceReference, evidenceWindowDays, ctx.BusinessName))
}

// CeaseContactAcknowledgment honours a cessation request.
func (b *Builder) CeaseContactAcknowledgment(ctx call.Context) string {
	return b.compliant(fmt.Sprintf(
		"Understood. I've recorded your request and %s will not contact you by phone again about invoice %s. Thank you for your time.",
		ctx.BusinessName, ctx.InvoiceReference))
}

// compliant gates every scripted line through the filter. A violation is a
// template bug; the safe fallback keeps the conversation going.
func (b *Builder) compliant(text string) string {
	if b.filter.IsCompliant(text) {
		return text
	}
	slog.Warn("scripted line failed compliance check; using fallback")
	return b.filter.FallbackResponse()
}

func roundToPence(v float64) float64 {
	return math.Round(v*100) / 100
}
