package repository

import (
	"context"
	"time"

	"github.com/recouphq/voicebridge/internal/call"
)

type CreateCallInput struct {
	InvoiceID        string
	InvoiceReference string
	ClientName       string
	BusinessName     string
	Amount           float64
	StartedAt        time.Time
}

type AttachStreamInput struct {
	CallID    string
	CallSID   string
	StreamSID string
}

type CompleteCallInput struct {
	CallID          string
	EndedAt         time.Time
	Outcome         call.Outcome
	DurationSeconds int64
}

type InsertTranscriptEntryInput struct {
	CallID     string
	Speaker    call.Speaker
	Content    string
	EntryIndex int
	SpokenAt   time.Time
}

type CallRepository interface {
	CreateCall(ctx context.Context, input CreateCallInput) (*CallRecord, error)
	AttachStreamIdentifiers(ctx context.Context, input AttachStreamInput) error
	CompleteCall(ctx context.Context, input CompleteCallInput) error
	GetCallBySID(ctx context.Context, callSID string) (*CallRecord, error)
	// LastCallTimeForInvoice returns the zero time when the invoice has
	// never been called.
	LastCallTimeForInvoice(ctx context.Context, invoiceID string) (time.Time, error)
}

type TranscriptRepository interface {
	InsertTranscriptEntry(ctx context.Context, input InsertTranscriptEntryInput) error
	ListTranscriptEntries(ctx context.Context, callID string) ([]TranscriptRow, error)
}

type Repository interface {
	CallRepository
	TranscriptRepository
}
