package settlement

import (
	"github.com/smallbiznis/revshare/internal/settlement/repository"
	"github.com/smallbiznis/revshare/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
