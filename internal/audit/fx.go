package audit

import (
	"github.com/smallbiznis/revshare/internal/audit/repository"
	"github.com/smallbiznis/revshare/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
