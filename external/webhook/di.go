package webhook

import (
	"github.com/recouphq/voicebridge/internal/config"
	"github.com/recouphq/voicebridge/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (webhook.Dispatcher, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPDispatcher(c.WebhookURL, c.WebhookSecret), nil
	})
}
