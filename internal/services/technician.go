package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/entities"
	"gear-guard/internal/events"
	"gear-guard/internal/repositories"
	apperrors "gear-guard/pkg/errors"
)

type TechnicianServiceInterface interface {
	GetTechnicians(ctx context.Context) ([]entities.Technician, error)
	CreateTechnician(ctx context.Context, payload dto.CreateTechnicianDTO) (string, error)
}

type TechnicianService struct {
	*BaseService
	repo repositories.MaintenanceRepositoryInterface
}

func NewTechnicianService(repo repositories.MaintenanceRepositoryInterface, base *BaseService) TechnicianServiceInterface {
	return &TechnicianService{BaseService: base, repo: repo}
}

func (s *TechnicianService) GetTechnicians(ctx context.Context) ([]entities.Technician, error) {
	return s.repo.ListTechnicians(ctx)
}

func (s *TechnicianService) CreateTechnician(ctx context.Context, payload dto.CreateTechnicianDTO) (string, error) {
	name := strings.TrimSpace(payload.DisplayName)
	if name == "" {
		return "", apperrors.NewInvalidInputError("Technician name is required")
	}
	id, err := s.repo.CreateTechnician(ctx, name)
	if err != nil {
		s.logger.Error("Ошибка при создании техника", zap.Error(err))
		return "", err
	}
	s.logger.Info("Техник создан", zap.String("technicianId", id))
	s.notifyChanged(ctx, entities.CollectionTechnicians, id, events.ActionCreated)
	return id, nil
}
