package call

import (
	"fmt"
	"time"
)

// Speaker identifies which side of the call produced a transcript entry.
type Speaker string

const (
	SpeakerDebtor    Speaker = "debtor"
	SpeakerAssistant Speaker = "assistant"
)

// Outcome is the final classification of a completed call.
type Outcome string

const (
	OutcomePaymentCommitted Outcome = "payment_committed"
	OutcomePaymentPlan      Outcome = "payment_plan"
	OutcomeDispute          Outcome = "dispute"
	OutcomeNoResolution     Outcome = "no_resolution"
	OutcomeError            Outcome = "error"
)

// Context carries the invoice details a call is about. It is supplied when
// the media stream is accepted and never mutated afterwards.
type Context struct {
	InvoiceID        string
	InvoiceReference string
	Amount           float64
	DueDate          string
	DaysOverdue      int
	ClientName       string
	BusinessName     string
}

func (c Context) Validate() error {
	for _, req := range []struct {
		name  string
		value string
	}{
		{name: "invoiceId", value: c.InvoiceID},
		{name: "invoiceReference", value: c.InvoiceReference},
		{name: "dueDate", value: c.DueDate},
		{name: "clientName", value: c.ClientName},
		{name: "businessName", value: c.BusinessName},
	} {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %.2f", c.Amount)
	}
	if c.DaysOverdue < 0 {
		return fmt.Errorf("daysOverdue must not be negative, got %d", c.DaysOverdue)
	}
	return nil
}

// TranscriptEntry is one utterance in arrival order.
type TranscriptEntry struct {
	Timestamp time.Time
	Speaker   Speaker
	Text      string
}

// PaymentCommitment is a best-effort extraction, not a ledger entry.
type PaymentCommitment struct {
	Amount float64
	Date   time.Time
}

// Summary is produced exactly once when a call terminates and is immutable
// from then on.
type Summary struct {
	CallID     string
	CallSID    string
	StreamSID  string
	Context    Context
	StartedAt  time.Time
	EndedAt    time.Time
	Duration   time.Duration
	Outcome    Outcome
	Transcript []TranscriptEntry
	Commitment *PaymentCommitment
}

func (s Summary) DurationSeconds() int64 {
	secs := int64(s.Duration.Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
