package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(context.Context, ListReportsRequest) ([]Summary, error)
	GetByID(context.Context, GetReportRequest) (Summary, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
