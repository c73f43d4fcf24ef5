package partner

import (
	"github.com/smallbiznis/revshare/internal/partner/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("partner.directory",
	fx.Provide(repository.Provide),
)
