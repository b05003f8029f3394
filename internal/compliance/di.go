package compliance

import "github.com/samber/do/v2"

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (Filter, error) {
		return NewKeywordFilter(), nil
	})
}
