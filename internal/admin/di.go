package admin

import (
	"github.com/samber/do/v2"

	"github.com/oakmontlabs/timepunch/internal/reports"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		repo := do.MustInvoke[repository.Repository](i)
		rep := do.MustInvoke[*reports.Service](i)
		return NewService(repo, rep), nil
	})
}
