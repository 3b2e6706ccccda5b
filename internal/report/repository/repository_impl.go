package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/datalysis-io/datalysis/internal/report/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, summary *domain.Summary) error {
	return db.WithContext(ctx).Create(summary).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Summary, error) {
	var summary domain.Summary
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&summary).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit int) ([]domain.Summary, error) {
	var summaries []domain.Summary
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Prune deletes everything beyond the newest keep rows.
func (r *repo) Prune(ctx context.Context, db *gorm.DB, keep int) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM report_summaries WHERE id NOT IN (
			SELECT id FROM report_summaries ORDER BY created_at DESC, id DESC LIMIT ?
		)`,
		keep,
	).Error
}
