package webhook

import "context"

const EventCallCompleted = "call.completed"

// CallCompletedData mirrors the summary fields the system of record needs.
// Times are ISO 8601; Transcript is the newline-joined readable form.
type CallCompletedData struct {
	CallSID          string  `json:"callSid"`
	InvoiceID        string  `json:"invoiceId"`
	InvoiceReference string  `json:"invoiceReference"`
	ClientName       string  `json:"clientName"`
	DurationSeconds  int64   `json:"durationSeconds"`
	Outcome          string  `json:"outcome"`
	Transcript       string  `json:"transcript"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	CommittedAmount  float64 `json:"committedAmount,omitempty"`
	CommittedDate    string  `json:"committedDate,omitempty"`
}

type Payload struct {
	Event string            `json:"event"`
	Data  CallCompletedData `json:"data"`
}

// Dispatcher delivers completed-call summaries to the external system of
// record. Delivery is best-effort and at-most-once; callers log and swallow
// failures.
type Dispatcher interface {
	Deliver(ctx context.Context, payload Payload) error
}
