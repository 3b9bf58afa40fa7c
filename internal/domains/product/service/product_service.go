package service

import (
	"context"
	"fmt"

	"warehouse-pick-coordinator/internal/domains/product"
	"warehouse-pick-coordinator/internal/shared/apperr"
)

type productService struct {
	repo product.Repository
}

func NewProductService(repo product.Repository) product.Service {
	return &productService{repo: repo}
}

func (s *productService) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if err == product.ErrNotFound {
			return nil, apperr.NotFound(err.Error())
		}
		return nil, apperr.Internal(fmt.Errorf("find product by sku: %w", err))
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, req product.ListRequest) ([]product.Product, int, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	products, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("list products: %w", err))
	}
	return products, total, nil
}
