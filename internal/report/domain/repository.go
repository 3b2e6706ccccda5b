package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, summary *Summary) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Summary, error)
	List(ctx context.Context, db *gorm.DB, limit int) ([]Summary, error)
	Prune(ctx context.Context, db *gorm.DB, keep int) error
}
