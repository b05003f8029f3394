package session

import (
	"github.com/recouphq/voicebridge/internal/audio"
	"github.com/recouphq/voicebridge/internal/classify"
	"github.com/recouphq/voicebridge/internal/compliance"
	"github.com/recouphq/voicebridge/internal/config"
	"github.com/recouphq/voicebridge/internal/prompt"
	"github.com/recouphq/voicebridge/internal/realtime"
	"github.com/recouphq/voicebridge/internal/repository"
	"github.com/recouphq/voicebridge/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		codec := do.MustInvoke[audio.Codec](i)
		filter := do.MustInvoke[compliance.Filter](i)
		prompts := do.MustInvoke[*prompt.Builder](i)
		classifier := do.MustInvoke[classify.Classifier](i)
		rtClient := do.MustInvoke[realtime.Client](i)
		repo := do.MustInvoke[repository.Repository](i)
		dispatcher := do.MustInvoke[webhook.Dispatcher](i)
		return NewManager(cfg, codec, filter, prompts, classifier, rtClient, repo, dispatcher), nil
	})
}
