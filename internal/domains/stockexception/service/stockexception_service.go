package service

import (
	"context"
	"fmt"

	"warehouse-pick-coordinator/internal/domains/stockexception"
	"warehouse-pick-coordinator/internal/shared/apperr"
)

type stockExceptionService struct {
	repo stockexception.Repository
}

func NewStockExceptionService(repo stockexception.Repository) stockexception.Service {
	return &stockExceptionService{repo: repo}
}

func (s *stockExceptionService) RecordShortage(ctx context.Context, f stockexception.CreateFields) (*stockexception.StockException, error) {
	se, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("record shortage: %w", err))
	}
	return se, nil
}

func (s *stockExceptionService) ToggleOrderedFromCompany(ctx context.Context, id int64) error {
	if err := s.repo.ToggleOrderedFromCompany(ctx, id); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *stockExceptionService) ToggleNACancel(ctx context.Context, id int64) error {
	if err := s.repo.ToggleNACancel(ctx, id); err != nil {
		return mapErr(err)
	}
	return nil
}

// Resolve is idempotent: resolving an already-resolved exception succeeds.
func (s *stockExceptionService) Resolve(ctx context.Context, id int64) error {
	if err := s.repo.SetResolved(ctx, id, true); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *stockExceptionService) List(ctx context.Context, filter stockexception.ListFilter) ([]stockexception.StockException, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("list stock exceptions: %w", err))
	}
	return list, total, nil
}

func mapErr(err error) error {
	if err == stockexception.ErrNotFound {
		return apperr.NotFound(err.Error())
	}
	return apperr.Internal(err)
}
