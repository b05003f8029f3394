package prompt

import (
	"github.com/recouphq/voicebridge/internal/compliance"
	"github.com/recouphq/voicebridge/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Builder, error) {
		cfg := do.MustInvoke[*config.Config](i)
		filter := do.MustInvoke[compliance.Filter](i)
		return NewBuilder(cfg.FCAFirmReference, filter), nil
	})
}
