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

type TeamServiceInterface interface {
	GetTeams(ctx context.Context) ([]entities.Team, error)
	CreateTeam(ctx context.Context, payload dto.CreateTeamDTO) (string, error)
	SetTechnicians(ctx context.Context, teamID string, payload dto.SetTeamTechniciansDTO) error
}

type TeamService struct {
	*BaseService
	repo repositories.MaintenanceRepositoryInterface
}

func NewTeamService(repo repositories.MaintenanceRepositoryInterface, base *BaseService) TeamServiceInterface {
	return &TeamService{BaseService: base, repo: repo}
}

func (s *TeamService) GetTeams(ctx context.Context) ([]entities.Team, error) {
	return s.repo.ListTeams(ctx)
}

func (s *TeamService) CreateTeam(ctx context.Context, payload dto.CreateTeamDTO) (string, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return "", apperrors.NewInvalidInputError("Team name is required")
	}
	id, err := s.repo.CreateTeam(ctx, name)
	if err != nil {
		s.logger.Error("Ошибка при создании команды", zap.Error(err))
		return "", err
	}
	s.logger.Info("Команда создана", zap.String("teamId", id))
	s.notifyChanged(ctx, entities.CollectionTeams, id, events.ActionCreated)
	return id, nil
}

// SetTechnicians заменяет состав команды. Уже назначенные заявки и оборудование
// не перепроверяются: членство проверяется только в момент назначения.
func (s *TeamService) SetTechnicians(ctx context.Context, teamID string, payload dto.SetTeamTechniciansDTO) error {
	ids := make([]string, 0, len(payload.TechnicianIDs))
	seen := make(map[string]struct{}, len(payload.TechnicianIDs))
	for _, id := range payload.TechnicianIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if err := s.repo.SetTeamTechnicians(ctx, teamID, ids); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFoundError("Team not found")
		}
		return err
	}
	s.logger.Info("Состав команды обновлён", zap.String("teamId", teamID), zap.Int("technicians", len(ids)))
	s.notifyChanged(ctx, entities.CollectionTeams, teamID, events.ActionUpdated)
	return nil
}
