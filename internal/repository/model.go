package repository

import (
	"time"

	"github.com/recouphq/voicebridge/internal/call"
)

type CallStatus string

const (
	CallStatusRunning   CallStatus = "running"
	CallStatusCompleted CallStatus = "completed"
)

type CallRecord struct {
	ID               string
	CallSID          string
	StreamSID        string
	InvoiceID        string
	InvoiceReference string
	ClientName       string
	BusinessName     string
	Amount           float64
	StartedAt        time.Time
	EndedAt          *time.Time
	Status           CallStatus
	Outcome          call.Outcome
	DurationSeconds  int64
}

type TranscriptRow struct {
	ID         string
	CallID     string
	Speaker    call.Speaker
	Content    string
	EntryIndex int
	SpokenAt   time.Time
	CreatedAt  time.Time
}
