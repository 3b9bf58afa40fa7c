package service

import (
	"context"
	"fmt"
	"time"

	"warehouse-pick-coordinator/internal/domains/settings"
	"warehouse-pick-coordinator/internal/shared/apperr"
	"warehouse-pick-coordinator/pkg/cache"
)

const (
	cacheKeyAPIConfig      = "settings:api_config"
	cacheKeyNotifierConfig = "settings:notifier_config"
	cacheTTL               = 5 * time.Minute
)

type settingsService struct {
	repo  settings.Repository
	cache cache.Cache
}

func NewSettingsService(repo settings.Repository, c cache.Cache) settings.Service {
	return &settingsService{repo: repo, cache: c}
}

func (s *settingsService) GetAPIConfig(ctx context.Context) (*settings.APIConfig, error) {
	var cfg settings.APIConfig
	if found, _ := s.cache.Get(ctx, cacheKeyAPIConfig, &cfg); found {
		return &cfg, nil
	}
	stored, err := s.repo.GetAPIConfig(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("get api config: %w", err))
	}
	_ = s.cache.Set(ctx, cacheKeyAPIConfig, stored, cacheTTL)
	return stored, nil
}

func (s *settingsService) PutAPIConfig(ctx context.Context, cfg settings.APIConfig) error {
	if err := s.repo.PutAPIConfig(ctx, cfg); err != nil {
		return apperr.Internal(fmt.Errorf("put api config: %w", err))
	}
	_ = s.cache.Delete(ctx, cacheKeyAPIConfig)
	return nil
}

func (s *settingsService) GetNotifierConfig(ctx context.Context) (*settings.NotifierConfig, error) {
	var cfg settings.NotifierConfig
	if found, _ := s.cache.Get(ctx, cacheKeyNotifierConfig, &cfg); found {
		return &cfg, nil
	}
	stored, err := s.repo.GetNotifierConfig(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("get notifier config: %w", err))
	}
	_ = s.cache.Set(ctx, cacheKeyNotifierConfig, stored, cacheTTL)
	return stored, nil
}

func (s *settingsService) PutNotifierConfig(ctx context.Context, cfg settings.NotifierConfig) error {
	if err := s.repo.PutNotifierConfig(ctx, cfg); err != nil {
		return apperr.Internal(fmt.Errorf("put notifier config: %w", err))
	}
	_ = s.cache.Delete(ctx, cacheKeyNotifierConfig)
	return nil
}
