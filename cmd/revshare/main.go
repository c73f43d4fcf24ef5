package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/revshare/internal/clock"
	"github.com/smallbiznis/revshare/internal/config"
	"github.com/smallbiznis/revshare/internal/migration"
	"github.com/smallbiznis/revshare/internal/server"
	"github.com/smallbiznis/revshare/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
