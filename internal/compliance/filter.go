package compliance

import (
	"log/slog"
	"strings"
)

// Filter validates generated speech content against the debt-collection
// conduct policy (CONC 7.3). It is advisory for pre-generated text; the
// live model audio stream is not token-filtered.
type Filter interface {
	IsCompliant(text string) bool
	FallbackResponse() string
}

// prohibitedPhrases covers legal-action threats, court/bailiff/credit-file
// references and false urgency language. Matching is case-insensitive
// containment.
var prohibitedPhrases = []string{
	"legal action",
	"take you to court",
	"court proceedings",
	"county court",
	"ccj",
	"bailiff",
	"solicitor",
	"prosecution",
	"arrest",
	"credit rating",
	"credit score",
	"credit file",
	"credit report",
	"blacklist",
	"seize",
	"final warning",
	"last chance",
	"or else",
	"serious consequences",
	"act now or",
}

const fallbackUtterance = "I understand. Let's find a way forward that works for you. " +
	"You're welcome to discuss payment options, or to raise any concerns you have about this invoice."

type KeywordFilter struct{}

func NewKeywordFilter() Filter {
	return &KeywordFilter{}
}

func (f *KeywordFilter) IsCompliant(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range prohibitedPhrases {
		if strings.Contains(lowered, phrase) {
			slog.Warn("compliance violation detected", "phrase", phrase)
			return false
		}
	}
	return true
}

func (f *KeywordFilter) FallbackResponse() string {
	return fallbackUtterance
}
