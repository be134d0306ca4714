package services

import (
	"context"
	"errors"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/entities"
	"gear-guard/internal/events"
	"gear-guard/internal/repositories"
	"gear-guard/internal/workflow"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/metrics"
)

type MaintenanceRequestServiceInterface interface {
	CreateRequest(ctx context.Context, payload dto.CreateMaintenanceRequestDTO) (*entities.MaintenanceRequest, error)
	UpdateStatus(ctx context.Context, requestID string, payload dto.UpdateRequestStatusDTO) (*entities.MaintenanceRequest, error)
	AssignTechnician(ctx context.Context, requestID string, payload dto.AssignTechnicianDTO) (*entities.MaintenanceRequest, error)
	FindRequest(ctx context.Context, id string) (*entities.MaintenanceRequest, error)
	GetRequests(ctx context.Context, filter dto.RequestListFilter) ([]entities.MaintenanceRequest, error)
	GetOpenRequests(ctx context.Context) ([]entities.MaintenanceRequest, error)
	GetPreventiveRequests(ctx context.Context) ([]entities.MaintenanceRequest, error)
	ExportRequests(ctx context.Context) ([]byte, error)
}

type MaintenanceRequestService struct {
	*BaseService
	repo   repositories.MaintenanceRepositoryInterface
	engine *workflow.Engine
}

func NewMaintenanceRequestService(
	repo repositories.MaintenanceRepositoryInterface,
	engine *workflow.Engine,
	base *BaseService,
) MaintenanceRequestServiceInterface {
	return &MaintenanceRequestService{BaseService: base, repo: repo, engine: engine}
}

func (s *MaintenanceRequestService) CreateRequest(ctx context.Context, payload dto.CreateMaintenanceRequestDTO) (*entities.MaintenanceRequest, error) {
	req, err := s.engine.CreateRequest(ctx, workflow.CreateRequestInput{
		Type:         entities.RequestType(payload.Type),
		Subject:      payload.Subject,
		EquipmentID:  payload.EquipmentID,
		Description:  payload.Description,
		TechnicianID: payload.TechnicianID,
		ScheduledAt:  payload.ScheduledAt,
	})
	metrics.ObserveRequestCreated(payload.Type, outcome(err))
	if err != nil {
		s.logger.Warn("Заявка не создана", zap.String("equipmentId", payload.EquipmentID), zap.Error(err))
		return nil, err
	}
	s.notifyChanged(ctx, entities.CollectionRequests, req.ID, events.ActionCreated)
	return req, nil
}

// UpdateStatus выполняет переход и возвращает заявку, перечитанную из хранилища.
func (s *MaintenanceRequestService) UpdateStatus(ctx context.Context, requestID string, payload dto.UpdateRequestStatusDTO) (*entities.MaintenanceRequest, error) {
	next := entities.RequestStatus(payload.Status)

	from, err := s.engine.Transition(ctx, workflow.StatusUpdateInput{
		RequestID:     requestID,
		Next:          next,
		TechnicianID:  payload.TechnicianID,
		DurationHours: payload.DurationHours,
	})
	metrics.ObserveTransition(string(from), string(next), outcome(err))

	var incomplete *workflow.ScrapIncompleteError
	if errors.As(err, &incomplete) {
		metrics.IncScrapFailure()
		// заявка уже изменена: браузеры должны это увидеть
		s.notifyChanged(ctx, entities.CollectionRequests, requestID, events.ActionUpdated)
		return nil, err
	}
	if err != nil {
		s.logger.Warn("Переход статуса отклонён",
			zap.String("requestId", requestID),
			zap.String("to", string(next)),
			zap.Error(err))
		return nil, err
	}

	s.notifyChanged(ctx, entities.CollectionRequests, requestID, events.ActionUpdated)
	req, err := s.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if next == entities.StatusScrap {
		s.notifyChanged(ctx, entities.CollectionEquipment, req.EquipmentID, events.ActionUpdated)
	}
	return req, nil
}

func (s *MaintenanceRequestService) AssignTechnician(ctx context.Context, requestID string, payload dto.AssignTechnicianDTO) (*entities.MaintenanceRequest, error) {
	if err := s.engine.AssignTechnician(ctx, requestID, payload.TechnicianID); err != nil {
		return nil, err
	}
	s.logger.Info("Техник назначен", zap.String("requestId", requestID), zap.String("technicianId", payload.TechnicianID))
	s.notifyChanged(ctx, entities.CollectionRequests, requestID, events.ActionUpdated)
	return s.FindRequest(ctx, requestID)
}

func (s *MaintenanceRequestService) FindRequest(ctx context.Context, id string) (*entities.MaintenanceRequest, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Request not found")
		}
		return nil, err
	}
	return req, nil
}

// GetRequests - со статусом отдаёт колонку канбана, без статуса - все заявки.
func (s *MaintenanceRequestService) GetRequests(ctx context.Context, filter dto.RequestListFilter) ([]entities.MaintenanceRequest, error) {
	if filter.Status == "" {
		return s.repo.ListAllRequests(ctx)
	}
	status := entities.RequestStatus(filter.Status)
	if !isKnownStatus(status) {
		return nil, apperrors.NewInvalidInputError("Unknown status: %s", filter.Status)
	}
	return s.repo.ListRequestsByStatus(ctx, status, filter.EquipmentID)
}

func (s *MaintenanceRequestService) GetOpenRequests(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	return s.repo.ListOpenRequests(ctx)
}

func (s *MaintenanceRequestService) GetPreventiveRequests(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	return s.repo.ListPreventiveRequests(ctx)
}

func isKnownStatus(status entities.RequestStatus) bool {
	for _, s := range entities.AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case apperrors.IsUnavailable(err):
		return metrics.ResultUnavailable
	case apperrors.IsNotFound(err):
		return metrics.ResultNotFound
	case apperrors.IsInvalidInput(err):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

func optional(s null.String) string {
	if !s.Valid {
		return ""
	}
	return s.String
}
