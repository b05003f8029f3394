package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/recouphq/voicebridge/internal/call"
	"github.com/recouphq/voicebridge/internal/webhook"
)

// FormatTranscript renders the transcript as one readable line per
// utterance, in arrival order.
func FormatTranscript(entries []call.TranscriptEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", e.Timestamp.Format(time.RFC3339), speakerLabel(e.Speaker), e.Text))
	}
	return strings.Join(lines, "\n")
}

func speakerLabel(s call.Speaker) string {
	switch s {
	case call.SpeakerDebtor:
		return "Debtor"
	case call.SpeakerAssistant:
		return "Assistant"
	default:
		return string(s)
	}
}

func buildWebhookPayload(summary call.Summary) webhook.Payload {
	data := webhook.CallCompletedData{
		CallSID:          summary.CallSID,
		InvoiceID:        summary.Context.InvoiceID,
		InvoiceReference: summary.Context.InvoiceReference,
		ClientName:       summary.Context.ClientName,
		DurationSeconds:  summary.DurationSeconds(),
		Outcome:          string(summary.Outcome),
		Transcript:       FormatTranscript(summary.Transcript),
		StartTime:        summary.StartedAt.Format(time.RFC3339),
		EndTime:          summary.EndedAt.Format(time.RFC3339),
	}
	if summary.Commitment != nil {
		data.CommittedAmount = summary.Commitment.Amount
		data.CommittedDate = summary.Commitment.Date.Format(time.RFC3339)
	}
	return webhook.Payload{Event: webhook.EventCallCompleted, Data: data}
}
