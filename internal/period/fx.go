package period

import (
	"github.com/smallbiznis/revshare/internal/period/repository"
	"github.com/smallbiznis/revshare/internal/period/service"
	"go.uber.org/fx"
)

var Module = fx.Module("period",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
