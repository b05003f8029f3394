package server

import (
	"github.com/recouphq/voicebridge/internal/config"
	"github.com/recouphq/voicebridge/internal/repository"
	"github.com/recouphq/voicebridge/internal/session"
	"github.com/recouphq/voicebridge/internal/telephony"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		manager := do.MustInvoke[*session.Manager](i)
		repo := do.MustInvoke[repository.Repository](i)
		initiator := do.MustInvoke[telephony.Initiator](i)
		return New(cfg, manager, repo, initiator), nil
	})
}
