package attribution

import (
	"github.com/smallbiznis/revshare/internal/attribution/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("attribution.stream",
	fx.Provide(repository.Provide),
)
