package telephony

import (
	"github.com/recouphq/voicebridge/internal/config"
	"github.com/recouphq/voicebridge/internal/telephony"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (telephony.Initiator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewTwilioInitiator(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber), nil
	})
}
