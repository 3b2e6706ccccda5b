package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/datalysis-io/datalysis/internal/clock"
	"github.com/datalysis-io/datalysis/internal/config"
	"github.com/datalysis-io/datalysis/internal/ingest"
	"github.com/datalysis-io/datalysis/internal/observability"
	"github.com/datalysis-io/datalysis/internal/report"
	"github.com/datalysis-io/datalysis/internal/server"
	"github.com/datalysis-io/datalysis/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		db.Module,

		report.Module,
		ingest.Module,
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
