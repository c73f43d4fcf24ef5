package migration

import (
	attributiondomain "github.com/smallbiznis/revshare/internal/attribution/domain"
	auditdomain "github.com/smallbiznis/revshare/internal/audit/domain"
	"github.com/smallbiznis/revshare/internal/config"
	partnerdomain "github.com/smallbiznis/revshare/internal/partner/domain"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	revenuedomain "github.com/smallbiznis/revshare/internal/revenue/domain"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Non-postgres deployments (local sqlite, mysql) use the model
			// definitions directly. The versioned SQL is postgres-only.
			return conn.AutoMigrate(
				&partnerdomain.Partner{},
				&partnerdomain.Agreement{},
				&attributiondomain.Event{},
				&revenuedomain.Entry{},
				&perioddomain.SettlementPeriod{},
				&settlementdomain.LineItem{},
				&auditdomain.AuditLog{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
