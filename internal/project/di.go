package project

import (
	"github.com/oakmontlabs/timepunch/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		repo := do.MustInvoke[repository.Repository](i)
		return NewService(repo), nil
	})
}
