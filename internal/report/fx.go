package report

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	ingestdomain "github.com/datalysis-io/datalysis/internal/ingest/domain"
	"github.com/datalysis-io/datalysis/internal/report/domain"
	"github.com/datalysis-io/datalysis/internal/report/repository"
	"github.com/datalysis-io/datalysis/internal/report/service"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		service.New,
		func(s *service.Service) domain.Service { return s },
		func(s *service.Service) ingestdomain.HistoryRecorder { return s },
	),
	fx.Invoke(migrate),
)

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Summary{})
}
