// Package workflow - общие правила жизненного цикла заявки на обслуживание:
// создание, статусная машина, назначение техника, списание оборудования.
//
// Движок не хранит состояния: каждая операция заново читает документы и пишет
// результат отдельными запросами без блокировок и CAS. Между проверкой и записью
// данные могут измениться (например, техника уберут из команды) - такая гонка
// известна и допускается.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"gear-guard/internal/entities"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/utils"
)

// Repository - всё, что движку нужно от хранилища. Отсутствующие документы
// возвращаются ошибкой, совместимой с errors.Is(err, apperrors.ErrNotFound).
type Repository interface {
	GetEquipment(ctx context.Context, id string) (*entities.Equipment, error)
	GetTeam(ctx context.Context, id string) (*entities.Team, error)
	GetRequest(ctx context.Context, id string) (*entities.MaintenanceRequest, error)
	CreateRequest(ctx context.Context, req entities.MaintenanceRequest) (*entities.MaintenanceRequest, error)
	UpdateRequest(ctx context.Context, id string, patch entities.RequestPatch) error
	MarkEquipmentScrapped(ctx context.Context, id string) error
}

// AtomicScrapper - необязательная возможность репозитория записать заявку
// и оборудование одной атомарной операцией.
type AtomicScrapper interface {
	SupportsAtomicWrites(ctx context.Context) bool
	ScrapRequestAndEquipment(ctx context.Context, requestID string, patch entities.RequestPatch, equipmentID string) error
}

var transitions = map[entities.RequestStatus][]entities.RequestStatus{
	entities.StatusNew:        {entities.StatusInProgress, entities.StatusScrap},
	entities.StatusInProgress: {entities.StatusRepaired, entities.StatusScrap},
	entities.StatusRepaired:   {},
	entities.StatusScrap:      {},
}

// CanTransition - разрешён ли переход from -> to.
func CanTransition(from, to entities.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions - допустимые следующие статусы; для терминальных и неизвестных пусто.
func AllowedTransitions(from entities.RequestStatus) []entities.RequestStatus {
	return append([]entities.RequestStatus{}, transitions[from]...)
}

// ScrapIncompleteError - заявка уже списана, а оборудование обновить не удалось.
// Отката нет: заявка остаётся в scrap, оборудование - active.
type ScrapIncompleteError struct {
	RequestID   string
	EquipmentID string
	Err         error
}

func (e *ScrapIncompleteError) Error() string {
	return fmt.Sprintf("request %s was scrapped but equipment %s could not be marked as scrapped: %v",
		e.RequestID, e.EquipmentID, e.Err)
}

func (e *ScrapIncompleteError) Unwrap() error { return e.Err }

type CreateRequestInput struct {
	Type         entities.RequestType
	Subject      string
	EquipmentID  string
	Description  null.String
	TechnicianID null.String
	ScheduledAt  null.String
}

type StatusUpdateInput struct {
	RequestID     string
	Next          entities.RequestStatus
	TechnicianID  null.String
	DurationHours null.Float64
}

type Engine struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func New(repo Repository, opts ...Option) *Engine {
	e := &Engine{repo: repo, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateRequest проверяет оборудование, команду и техника и сохраняет заявку в статусе new.
// Без техника заявка создаётся неназначенной.
func (e *Engine) CreateRequest(ctx context.Context, in CreateRequestInput) (*entities.MaintenanceRequest, error) {
	equipment, err := e.repo.GetEquipment(ctx, strings.TrimSpace(in.EquipmentID))
	if err != nil {
		return nil, notFound(err, "Equipment not found")
	}

	teamID := utils.TrimmedString(equipment.DefaultTeamID)
	if !teamID.Valid {
		return nil, apperrors.NewInvalidInputError("Equipment has no default maintenance team")
	}

	team, err := e.repo.GetTeam(ctx, teamID.String)
	if err != nil {
		return nil, notFound(err, "Default maintenance team not found")
	}

	technicianID := utils.FirstPresent(in.TechnicianID, equipment.DefaultTechnicianID)
	if technicianID.Valid && !team.HasMember(technicianID.String) {
		return nil, apperrors.NewInvalidInputError("Technician is not a member of the assigned team")
	}

	category := utils.TrimmedString(equipment.Category)
	if !category.Valid {
		category = null.StringFrom(entities.UncategorizedEquipment)
	}

	now := e.now().UTC().Truncate(time.Millisecond)
	created, err := e.repo.CreateRequest(ctx, entities.MaintenanceRequest{
		Type:              in.Type,
		Subject:           strings.TrimSpace(in.Subject),
		Description:       utils.TrimmedString(in.Description),
		EquipmentID:       equipment.ID,
		EquipmentCategory: category,
		TeamID:            team.ID,
		TechnicianID:      technicianID,
		ScheduledAt:       utils.TrimmedString(in.ScheduledAt),
		Status:            entities.StatusNew,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Создана заявка",
		zap.String("requestId", created.ID),
		zap.String("equipmentId", created.EquipmentID),
		zap.String("teamId", created.TeamID),
		zap.Bool("assigned", created.TechnicianID.Valid))
	return created, nil
}

// UpdateStatus переводит заявку по статусной машине.
func (e *Engine) UpdateStatus(ctx context.Context, in StatusUpdateInput) error {
	_, err := e.Transition(ctx, in)
	return err
}

// Transition - то же, что UpdateStatus, но ещё возвращает статус, с которым заявка
// была прочитана (пустой, если заявку прочитать не удалось).
func (e *Engine) Transition(ctx context.Context, in StatusUpdateInput) (entities.RequestStatus, error) {
	req, err := e.repo.GetRequest(ctx, in.RequestID)
	if err != nil {
		return "", notFound(err, "Request not found")
	}
	from := req.Status

	team, err := e.repo.GetTeam(ctx, req.TeamID)
	if err != nil {
		return from, notFound(err, "Team not found")
	}

	if !CanTransition(from, in.Next) {
		return from, apperrors.NewInvalidInputError("Invalid status transition: %s -> %s", from, in.Next)
	}

	next := in.Next
	switch next {
	case entities.StatusInProgress:
		technicianID := utils.FirstPresent(in.TechnicianID, req.TechnicianID)
		if !technicianID.Valid {
			return from, apperrors.NewInvalidInputError("Technician must be assigned to move to In Progress")
		}
		if !team.HasMember(technicianID.String) {
			return from, apperrors.NewInvalidInputError("Technician is not a member of the assigned team")
		}
		err = e.repo.UpdateRequest(ctx, req.ID, entities.RequestPatch{Status: &next, TechnicianID: technicianID})

	case entities.StatusRepaired:
		// NaN не проходит сравнение, поэтому отсекается вместе с отрицательными
		if !in.DurationHours.Valid || !(in.DurationHours.Float64 >= 0) {
			return from, apperrors.NewInvalidInputError("Duration hours is required")
		}
		err = e.repo.UpdateRequest(ctx, req.ID, entities.RequestPatch{Status: &next, DurationHours: in.DurationHours})

	case entities.StatusScrap:
		err = e.scrap(ctx, req)
	}
	if err != nil {
		return from, err
	}

	e.logger.Info("Статус заявки изменён",
		zap.String("requestId", req.ID),
		zap.String("from", string(from)),
		zap.String("to", string(next)))
	return from, nil
}

// scrap - заявка, затем оборудование. Если репозиторий умеет атомарную запись,
// обе записи идут одной пачкой; иначе ошибка второй записи оставляет заявку в scrap.
func (e *Engine) scrap(ctx context.Context, req *entities.MaintenanceRequest) error {
	status := entities.StatusScrap
	patch := entities.RequestPatch{Status: &status}

	if atomic, ok := e.repo.(AtomicScrapper); ok && atomic.SupportsAtomicWrites(ctx) {
		return atomic.ScrapRequestAndEquipment(ctx, req.ID, patch, req.EquipmentID)
	}

	if err := e.repo.UpdateRequest(ctx, req.ID, patch); err != nil {
		return err
	}
	if err := e.repo.MarkEquipmentScrapped(ctx, req.EquipmentID); err != nil {
		e.logger.Error("Заявка списана, но оборудование осталось активным",
			zap.String("requestId", req.ID),
			zap.String("equipmentId", req.EquipmentID),
			zap.Error(err))
		return &ScrapIncompleteError{RequestID: req.ID, EquipmentID: req.EquipmentID, Err: err}
	}
	return nil
}

// AssignTechnician назначает техника без смены статуса. Техник должен состоять в команде заявки.
func (e *Engine) AssignTechnician(ctx context.Context, requestID, technicianID string) error {
	req, err := e.repo.GetRequest(ctx, requestID)
	if err != nil {
		return notFound(err, "Request not found")
	}
	team, err := e.repo.GetTeam(ctx, req.TeamID)
	if err != nil {
		return notFound(err, "Team not found")
	}

	technician := utils.TrimmedString(null.StringFrom(technicianID))
	if !technician.Valid {
		return apperrors.NewInvalidInputError("Technician is required")
	}
	if !team.HasMember(technician.String) {
		return apperrors.NewInvalidInputError("Technician is not a member of the assigned team")
	}
	return e.repo.UpdateRequest(ctx, req.ID, entities.RequestPatch{TechnicianID: technician})
}

// notFound заменяет ErrNotFound понятной причиной; ошибки связи проходят как есть.
func notFound(err error, message string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError("%s", message)
	}
	return err
}
