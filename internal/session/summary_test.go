package session

import (
	"strings"
	"testing"
	"time"

	"github.com/recouphq/voicebridge/internal/call"
	"github.com/recouphq/voicebridge/internal/webhook"
)

func TestFormatTranscript(t *testing.T) {
	base := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	entries := []call.TranscriptEntry{
		{Timestamp: base, Speaker: call.SpeakerAssistant, Text: "Hello, am I speaking with Jordan Miles?"},
		{Timestamp: base.Add(5 * time.Second), Speaker: call.SpeakerDebtor, Text: "Yes, speaking."},
	}

	got := FormatTranscript(entries)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "[2026-08-28T14:30:00Z] Assistant: Hello, am I speaking with Jordan Miles?" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "[2026-08-28T14:30:05Z] Debtor: Yes, speaking." {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestFormatTranscriptEmpty(t *testing.T) {
	if got := FormatTranscript(nil); got != "" {
		t.Errorf("expected empty string for no entries, got %q", got)
	}
}

func TestBuildWebhookPayload(t *testing.T) {
	startedAt := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	endedAt := startedAt.Add(90 * time.Second)
	summary := call.Summary{
		CallID:    "id-1",
		CallSID:   "CA999",
		StreamSID: "MZ999",
		Context: call.Context{
			InvoiceID:        "inv-9",
			InvoiceReference: "INV-2024-009",
			ClientName:       "Jordan Miles",
			BusinessName:     "Acme Widgets Ltd",
			Amount:           250,
		},
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Duration:  endedAt.Sub(startedAt),
		Outcome:   call.OutcomePaymentCommitted,
		Transcript: []call.TranscriptEntry{
			{Timestamp: startedAt, Speaker: call.SpeakerDebtor, Text: "I will pay today."},
		},
		Commitment: &call.PaymentCommitment{Amount: 250, Date: endedAt},
	}

	payload := buildWebhookPayload(summary)
	if payload.Event != webhook.EventCallCompleted {
		t.Fatalf("unexpected event: %s", payload.Event)
	}
	data := payload.Data
	if data.CallSID != "CA999" || data.InvoiceID != "inv-9" || data.InvoiceReference != "INV-2024-009" {
		t.Errorf("identifier fields wrong: %+v", data)
	}
	if data.DurationSeconds != 90 {
		t.Errorf("expected duration 90, got %d", data.DurationSeconds)
	}
	if data.StartTime != "2026-08-28T14:30:00Z" || data.EndTime != "2026-08-28T14:31:30Z" {
		t.Errorf("unexpected time fields: start=%s end=%s", data.StartTime, data.EndTime)
	}
	if data.CommittedAmount != 250 || data.CommittedDate != endedAt.Format(time.RFC3339) {
		t.Errorf("unexpected commitment fields: amount=%v date=%s", data.CommittedAmount, data.CommittedDate)
	}
	if !strings.Contains(data.Transcript, "Debtor: I will pay today.") {
		t.Errorf("transcript missing line: %q", data.Transcript)
	}
}

func TestBuildWebhookPayloadWithoutCommitment(t *testing.T) {
	summary := call.Summary{
		Outcome: call.OutcomeNoResolution,
		Context: call.Context{InvoiceID: "inv-1"},
	}
	payload := buildWebhookPayload(summary)
	if payload.Data.CommittedAmount != 0 || payload.Data.CommittedDate != "" {
		t.Errorf("expected zero commitment fields, got %+v", payload.Data)
	}
	if payload.Data.Outcome != string(call.OutcomeNoResolution) {
		t.Errorf("unexpected outcome: %s", payload.Data.Outcome)
	}
}
