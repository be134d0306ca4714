package services

import (
	"context"

	"gear-guard/internal/repositories"
)

type HealthServiceInterface interface {
	Check(ctx context.Context) error
}

type HealthService struct {
	repo repositories.MaintenanceRepositoryInterface
}

func NewHealthService(repo repositories.MaintenanceRepositoryInterface) HealthServiceInterface {
	return &HealthService{repo: repo}
}

// Check - доступно ли хранилище.
func (s *HealthService) Check(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
