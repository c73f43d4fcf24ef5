package locking

import (
	"github.com/smallbiznis/revshare/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("locking",
	fx.Provide(NewGuard),
	fx.Provide(provideLease),
)

func provideLease(cfg config.Config) *Lease {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return NewLease(client)
}
