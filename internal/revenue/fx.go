package revenue

import (
	"github.com/smallbiznis/revshare/internal/revenue/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("revenue.lookup",
	fx.Provide(repository.Provide),
)
