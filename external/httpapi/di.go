package httpapi

import (
	"github.com/samber/do/v2"

	"github.com/oakmontlabs/timepunch/internal/admin"
	"github.com/oakmontlabs/timepunch/internal/approval"
	"github.com/oakmontlabs/timepunch/internal/auth"
	"github.com/oakmontlabs/timepunch/internal/clock"
	"github.com/oakmontlabs/timepunch/internal/config"
	"github.com/oakmontlabs/timepunch/internal/project"
	"github.com/oakmontlabs/timepunch/internal/reports"
	"github.com/oakmontlabs/timepunch/internal/settings"
	"github.com/oakmontlabs/timepunch/internal/share"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		return NewServer(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*auth.Service](i),
			do.MustInvoke[*clock.Engine](i),
			do.MustInvoke[*reports.Service](i),
			do.MustInvoke[*project.Service](i),
			do.MustInvoke[*settings.Service](i),
			do.MustInvoke[*admin.Service](i),
			do.MustInvoke[*approval.Service](i),
			do.MustInvoke[*share.Service](i),
		), nil
	})
}
