package mailer

import (
	"github.com/oakmontlabs/timepunch/internal/config"
	"github.com/oakmontlabs/timepunch/internal/mailer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (mailer.Sender, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPSender(c.MailerURL), nil
	})
}
