package services

import (
	"context"
	"strings"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/entities"
	"gear-guard/internal/events"
	"gear-guard/internal/repositories"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/utils"
)

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context) ([]entities.Equipment, error)
	FindEquipment(ctx context.Context, id string) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (string, error)
}

type EquipmentService struct {
	*BaseService
	repo repositories.MaintenanceRepositoryInterface
}

func NewEquipmentService(repo repositories.MaintenanceRepositoryInterface, base *BaseService) EquipmentServiceInterface {
	return &EquipmentService{BaseService: base, repo: repo}
}

func (s *EquipmentService) GetEquipments(ctx context.Context) ([]entities.Equipment, error) {
	return s.repo.ListEquipment(ctx)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	eq, err := s.repo.GetEquipment(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Equipment not found")
		}
		return nil, err
	}
	return eq, nil
}

// CreateEquipment - оборудование всегда создаётся с командой и техником из этой команды.
func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (string, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return "", apperrors.NewInvalidInputError("Equipment name is required")
	}
	category := strings.TrimSpace(payload.Category)
	if category == "" {
		return "", apperrors.NewInvalidInputError("Equipment category is required")
	}
	teamID := strings.TrimSpace(payload.DefaultTeamID)
	if teamID == "" {
		return "", apperrors.NewInvalidInputError("Default maintenance team is required")
	}
	technicianID := strings.TrimSpace(payload.DefaultTechnicianID)
	if technicianID == "" {
		return "", apperrors.NewInvalidInputError("Default technician is required")
	}

	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", apperrors.NewNotFoundError("Team not found")
		}
		return "", err
	}
	if !team.HasMember(technicianID) {
		return "", apperrors.NewInvalidInputError("Default technician must be a member of the selected team")
	}

	id, err := s.repo.CreateEquipment(ctx, entities.Equipment{
		Name:                name,
		SerialNumber:        utils.TrimmedString(payload.SerialNumber),
		Category:            null.StringFrom(category),
		Location:            utils.TrimmedString(payload.Location),
		OwnerType:           utils.TrimmedString(payload.OwnerType),
		OwnerName:           utils.TrimmedString(payload.OwnerName),
		PurchaseDate:        utils.TrimmedString(payload.PurchaseDate),
		WarrantyUntil:       utils.TrimmedString(payload.WarrantyUntil),
		DefaultTeamID:       null.StringFrom(teamID),
		DefaultTechnicianID: null.StringFrom(technicianID),
		Status:              entities.EquipmentActive,
	})
	if err != nil {
		s.logger.Error("Ошибка при создании оборудования", zap.Error(err))
		return "", err
	}
	s.logger.Info("Оборудование создано", zap.String("equipmentId", id), zap.String("teamId", teamID))
	s.notifyChanged(ctx, entities.CollectionEquipment, id, events.ActionCreated)
	return id, nil
}
