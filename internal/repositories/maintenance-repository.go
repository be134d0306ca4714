package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"

	"gear-guard/internal/entities"
	"gear-guard/pkg/docstore"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/utils"
)

// Лимиты списков, как у экранов браузера.
const (
	equipmentListLimit    = 100
	teamListLimit         = 100
	technicianListLimit   = 200
	requestsByStatusLimit = 200
	preventiveLimit       = 200
	openRequestsLimit     = 500
	allRequestsLimit      = 500
)

// StoreSource отдаёт открытое хранилище. Реализуется docstore.Connector.
type StoreSource interface {
	Acquire(ctx context.Context) (docstore.Store, error)
}

type MaintenanceRepositoryInterface interface {
	GetEquipment(ctx context.Context, id string) (*entities.Equipment, error)
	GetTeam(ctx context.Context, id string) (*entities.Team, error)
	GetTechnician(ctx context.Context, id string) (*entities.Technician, error)
	GetRequest(ctx context.Context, id string) (*entities.MaintenanceRequest, error)

	CreateRequest(ctx context.Context, req entities.MaintenanceRequest) (*entities.MaintenanceRequest, error)
	UpdateRequest(ctx context.Context, id string, patch entities.RequestPatch) error
	MarkEquipmentScrapped(ctx context.Context, id string) error
	SupportsAtomicWrites(ctx context.Context) bool
	ScrapRequestAndEquipment(ctx context.Context, requestID string, patch entities.RequestPatch, equipmentID string) error

	ListEquipment(ctx context.Context) ([]entities.Equipment, error)
	ListTeams(ctx context.Context) ([]entities.Team, error)
	ListTechnicians(ctx context.Context) ([]entities.Technician, error)
	ListRequestsByStatus(ctx context.Context, status entities.RequestStatus, equipmentID string) ([]entities.MaintenanceRequest, error)
	ListPreventiveRequests(ctx context.Context) ([]entities.MaintenanceRequest, error)
	ListOpenRequests(ctx context.Context) ([]entities.MaintenanceRequest, error)
	ListAllRequests(ctx context.Context) ([]entities.MaintenanceRequest, error)

	CreateTeam(ctx context.Context, name string) (string, error)
	SetTeamTechnicians(ctx context.Context, teamID string, technicianIDs []string) error
	CreateTechnician(ctx context.Context, displayName string) (string, error)
	CreateEquipment(ctx context.Context, e entities.Equipment) (string, error)
	Ping(ctx context.Context) error
}

type MaintenanceRepository struct {
	source StoreSource
	now    func() time.Time
}

func NewMaintenanceRepository(source StoreSource) MaintenanceRepositoryInterface {
	return &MaintenanceRepository{source: source, now: time.Now}
}

// NewMaintenanceRepositoryWithClock - то же, но с подменяемыми часами (тесты).
func NewMaintenanceRepositoryWithClock(source StoreSource, now func() time.Time) MaintenanceRepositoryInterface {
	return &MaintenanceRepository{source: source, now: now}
}

// store открывает соединение по требованию. Любая ошибка открытия - ошибка связи.
func (r *MaintenanceRepository) store(ctx context.Context) (docstore.Store, error) {
	s, err := r.source.Acquire(ctx)
	if err != nil {
		if apperrors.IsUnavailable(err) {
			return nil, err
		}
		return nil, apperrors.NewUnavailableError("Connect", err)
	}
	return s, nil
}

func (r *MaintenanceRepository) get(ctx context.Context, collection, id string) (*docstore.Snapshot, error) {
	s, err := r.store(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%s: пустой id: %w", collection, apperrors.ErrNotFound)
	}
	snap, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, mapErr(collection, id, err)
	}
	return snap, nil
}

func (r *MaintenanceRepository) query(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	s, err := r.store(ctx)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, q)
}

func (r *MaintenanceRepository) GetEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	snap, err := r.get(ctx, entities.CollectionEquipment, id)
	if err != nil {
		return nil, err
	}
	return equipmentFromSnapshot(snap), nil
}

func (r *MaintenanceRepository) GetTeam(ctx context.Context, id string) (*entities.Team, error) {
	snap, err := r.get(ctx, entities.CollectionTeams, id)
	if err != nil {
		return nil, err
	}
	return teamFromSnapshot(snap), nil
}

func (r *MaintenanceRepository) GetTechnician(ctx context.Context, id string) (*entities.Technician, error) {
	snap, err := r.get(ctx, entities.CollectionTechnicians, id)
	if err != nil {
		return nil, err
	}
	return technicianFromSnapshot(snap), nil
}

func (r *MaintenanceRepository) GetRequest(ctx context.Context, id string) (*entities.MaintenanceRequest, error) {
	snap, err := r.get(ctx, entities.CollectionRequests, id)
	if err != nil {
		return nil, err
	}
	return requestFromSnapshot(snap), nil
}

// CreateRequest сохраняет заявку как есть; id назначает хранилище.
func (r *MaintenanceRepository) CreateRequest(ctx context.Context, req entities.MaintenanceRequest) (*entities.MaintenanceRequest, error) {
	s, err := r.store(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.Create(ctx, entities.CollectionRequests, requestToDocument(req))
	if err != nil {
		return nil, err
	}
	req.ID = id
	return &req, nil
}

// UpdateRequest - merge переданных полей плюс updatedAt.
func (r *MaintenanceRepository) UpdateRequest(ctx context.Context, id string, patch entities.RequestPatch) error {
	s, err := r.store(ctx)
	if err != nil {
		return err
	}
	if err := s.Merge(ctx, entities.CollectionRequests, id, requestPatchToDocument(patch, r.now())); err != nil {
		return mapErr(entities.CollectionRequests, id, err)
	}
	return nil
}

func (r *MaintenanceRepository) MarkEquipmentScrapped(ctx context.Context, id string) error {
	s, err := r.store(ctx)
	if err != nil {
		return err
	}
	if err := s.Merge(ctx, entities.CollectionEquipment, id, r.scrappedPatch()); err != nil {
		return mapErr(entities.CollectionEquipment, id, err)
	}
	return nil
}

func (r *MaintenanceRepository) scrappedPatch() docstore.Document {
	return docstore.Document{
		"status":    string(entities.EquipmentScrapped),
		"updatedAt": utils.FormatTimestamp(r.now()),
	}
}

func (r *MaintenanceRepository) SupportsAtomicWrites(ctx context.Context) bool {
	s, err := r.store(ctx)
	if err != nil {
		return false
	}
	_, ok := s.(docstore.Batcher)
	return ok
}

// ScrapRequestAndEquipment пишет заявку и оборудование одной атомарной пачкой.
// Работает только если хранилище реализует docstore.Batcher.
func (r *MaintenanceRepository) ScrapRequestAndEquipment(ctx context.Context, requestID string, patch entities.RequestPatch, equipmentID string) error {
	s, err := r.store(ctx)
	if err != nil {
		return err
	}
	batcher, ok := s.(docstore.Batcher)
	if !ok {
		return errors.New("хранилище не поддерживает атомарную запись нескольких документов")
	}
	now := r.now()
	err = batcher.RunBatch(ctx, func(b docstore.Batch) error {
		if err := b.Merge(entities.CollectionRequests, requestID, requestPatchToDocument(patch, now)); err != nil {
			return err
		}
		return b.Merge(entities.CollectionEquipment, equipmentID, docstore.Document{
			"status":    string(entities.EquipmentScrapped),
			"updatedAt": utils.FormatTimestamp(now),
		})
	})
	if err != nil {
		return mapErr("batch", requestID, err)
	}
	return nil
}

func (r *MaintenanceRepository) ListEquipment(ctx context.Context) ([]entities.Equipment, error) {
	snaps, err := r.query(ctx, docstore.From(entities.CollectionEquipment).Order("name", false).Take(equipmentListLimit))
	if err != nil {
		return nil, err
	}
	out := make([]entities.Equipment, 0, len(snaps))
	for i := range snaps {
		out = append(out, *equipmentFromSnapshot(&snaps[i]))
	}
	return out, nil
}

func (r *MaintenanceRepository) ListTeams(ctx context.Context) ([]entities.Team, error) {
	snaps, err := r.query(ctx, docstore.From(entities.CollectionTeams).Order("name", false).Take(teamListLimit))
	if err != nil {
		return nil, err
	}
	out := make([]entities.Team, 0, len(snaps))
	for i := range snaps {
		out = append(out, *teamFromSnapshot(&snaps[i]))
	}
	return out, nil
}

func (r *MaintenanceRepository) ListTechnicians(ctx context.Context) ([]entities.Technician, error) {
	snaps, err := r.query(ctx, docstore.From(entities.CollectionTechnicians).Order("displayName", false).Take(technicianListLimit))
	if err != nil {
		return nil, err
	}
	out := make([]entities.Technician, 0, len(snaps))
	for i := range snaps {
		out = append(out, *technicianFromSnapshot(&snaps[i]))
	}
	return out, nil
}

// ListRequestsByStatus - колонка канбана; equipmentID сужает до одного оборудования.
func (r *MaintenanceRepository) ListRequestsByStatus(ctx context.Context, status entities.RequestStatus, equipmentID string) ([]entities.MaintenanceRequest, error) {
	q := docstore.From(entities.CollectionRequests).Where("status", string(status))
	if equipmentID != "" {
		q = q.Where("equipmentId", equipmentID)
	}
	return r.listRequests(ctx, q.Order("updatedAt", true).Take(requestsByStatusLimit))
}

// ListPreventiveRequests - плановые заявки по дате, для календаря.
func (r *MaintenanceRepository) ListPreventiveRequests(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	q := docstore.From(entities.CollectionRequests).
		Where("type", string(entities.RequestTypePreventive)).
		Order("scheduledAt", false).
		Take(preventiveLimit)
	return r.listRequests(ctx, q)
}

func (r *MaintenanceRepository) ListOpenRequests(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	statuses := make([]string, 0, len(entities.OpenStatuses))
	for _, s := range entities.OpenStatuses {
		statuses = append(statuses, string(s))
	}
	return r.listRequests(ctx, docstore.From(entities.CollectionRequests).WhereIn("status", statuses...).Take(openRequestsLimit))
}

func (r *MaintenanceRepository) ListAllRequests(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	return r.listRequests(ctx, docstore.From(entities.CollectionRequests).Order("updatedAt", true).Take(allRequestsLimit))
}

func (r *MaintenanceRepository) listRequests(ctx context.Context, q docstore.Query) ([]entities.MaintenanceRequest, error) {
	snaps, err := r.query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]entities.MaintenanceRequest, 0, len(snaps))
	for i := range snaps {
		out = append(out, *requestFromSnapshot(&snaps[i]))
	}
	return out, nil
}

func (r *MaintenanceRepository) CreateTeam(ctx context.Context, name string) (string, error) {
	s, err := r.store(ctx)
	if err != nil {
		return "", err
	}
	now := utils.FormatTimestamp(r.now())
	return s.Create(ctx, entities.CollectionTeams, docstore.Document{
		"name":          name,
		"technicianIds": []string{},
		"createdAt":     now,
		"updatedAt":     now,
	})
}

// SetTeamTechnicians заменяет состав команды целиком. Существование техников не проверяется.
func (r *MaintenanceRepository) SetTeamTechnicians(ctx context.Context, teamID string, technicianIDs []string) error {
	s, err := r.store(ctx)
	if err != nil {
		return err
	}
	if technicianIDs == nil {
		technicianIDs = []string{}
	}
	err = s.Merge(ctx, entities.CollectionTeams, teamID, docstore.Document{
		"technicianIds": technicianIDs,
		"updatedAt":     utils.FormatTimestamp(r.now()),
	})
	if err != nil {
		return mapErr(entities.CollectionTeams, teamID, err)
	}
	return nil
}

func (r *MaintenanceRepository) CreateTechnician(ctx context.Context, displayName string) (string, error) {
	s, err := r.store(ctx)
	if err != nil {
		return "", err
	}
	now := utils.FormatTimestamp(r.now())
	return s.Create(ctx, entities.CollectionTechnicians, docstore.Document{
		"displayName": displayName,
		"avatarUrl":   nullable(null.String{}),
		"createdAt":   now,
		"updatedAt":   now,
	})
}

func (r *MaintenanceRepository) CreateEquipment(ctx context.Context, e entities.Equipment) (string, error) {
	s, err := r.store(ctx)
	if err != nil {
		return "", err
	}
	now := r.now()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Status == "" {
		e.Status = entities.EquipmentActive
	}
	return s.Create(ctx, entities.CollectionEquipment, equipmentToDocument(e))
}

func (r *MaintenanceRepository) Ping(ctx context.Context) error {
	s, err := r.store(ctx)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// mapErr переводит docstore.ErrNotFound в apperrors.ErrNotFound, остальное отдаёт как есть.
func mapErr(collection, id string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%s/%s: %w", collection, id, apperrors.ErrNotFound)
	}
	return err
}
