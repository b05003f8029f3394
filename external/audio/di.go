package audio

import (
	"github.com/recouphq/voicebridge/internal/audio"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.Codec, error) {
		return NewMulawCodec(), nil
	})
}
