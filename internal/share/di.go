package share

import (
	"github.com/samber/do/v2"

	"github.com/oakmontlabs/timepunch/internal/config"
	"github.com/oakmontlabs/timepunch/internal/mailer"
	"github.com/oakmontlabs/timepunch/internal/reports"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		rep := do.MustInvoke[*reports.Service](i)
		mail := do.MustInvoke[mailer.Sender](i)
		return NewService(repo, rep, mail, cfg.MailerFromAddress), nil
	})
}
