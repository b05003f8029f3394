package realtime

import (
	"github.com/recouphq/voicebridge/internal/config"
	"github.com/recouphq/voicebridge/internal/realtime"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (realtime.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIRealtimeModel), nil
	})
}
