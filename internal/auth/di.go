package auth

import (
	"github.com/oakmontlabs/timepunch/internal/config"
	"github.com/oakmontlabs/timepunch/internal/mailer"
	"github.com/oakmontlabs/timepunch/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		mail := do.MustInvoke[mailer.Sender](i)
		return NewService(cfg, repo, mail), nil
	})
}
