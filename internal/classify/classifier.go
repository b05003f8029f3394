package classify

import (
	"strings"

	"github.com/recouphq/voicebridge/internal/call"
)

// Classifier derives an outcome from a completed transcript. The keyword
// implementation is the default; a model-based classifier can be swapped in
// without touching the session contract.
type Classifier interface {
	Classify(transcript []call.TranscriptEntry) call.Outcome
}

// Precedence is fixed and first-match-wins: a transcript containing both a
// commitment phrase and a dispute phrase classifies as a commitment.
var (
	commitmentPhrases = []string{"pay today", "pay now", "pay immediately", "make payment"}
	planPhrases       = []string{"payment plan", "installment", "pay over time", "monthly payment"}
	disputePhrases    = []string{"dispute", "don't owe", "not mine", "never received", "already paid"}
)

type KeywordClassifier struct{}

func NewKeywordClassifier() Classifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(transcript []call.TranscriptEntry) call.Outcome {
	joined := joinLowered(transcript)
	switch {
	case containsAny(joined, commitmentPhrases):
		return call.OutcomePaymentCommitted
	case containsAny(joined, planPhrases):
		return call.OutcomePaymentPlan
	case containsAny(joined, disputePhrases):
		return call.OutcomeDispute
	default:
		return call.OutcomeNoResolution
	}
}

func joinLowered(transcript []call.TranscriptEntry) string {
	parts := make([]string, 0, len(transcript))
	for _, entry := range transcript {
		parts = append(parts, entry.Text)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
