package db

import (
	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/datalysis-io/datalysis/internal/config"
)

// Open connects the embedded report-history store. The driver is pure Go so
// the binary stays cgo-free.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	log.Info("database opened", zap.String("path", cfg.DBPath))
	return gormDB, nil
}

var Module = fx.Module("db",
	fx.Provide(Open),
)
