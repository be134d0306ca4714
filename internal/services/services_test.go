package services

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/entities"
	"gear-guard/internal/events"
	"gear-guard/internal/repositories"
	"gear-guard/internal/workflow"
	"gear-guard/pkg/docstore"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/eventbus"
)

type ServicesSuite struct {
	suite.Suite
	ctx   context.Context
	store *docstore.MemoryStore
	bus   *eventbus.Bus

	mu      sync.Mutex
	changes []events.DataChanged

	technicians TechnicianServiceInterface
	teams       TeamServiceInterface
	equipment   EquipmentServiceInterface
	requests    MaintenanceRequestServiceInterface
}

func TestServicesSuite(t *testing.T) {
	suite.Run(t, new(ServicesSuite))
}

func (s *ServicesSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = docstore.NewMemoryStore()
	s.bus = eventbus.New(zap.NewNop())
	s.changes = nil
	s.bus.Subscribe(events.DataChangedEventName, func(_ context.Context, e eventbus.Event) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.changes = append(s.changes, e.(events.DataChanged))
		return nil
	})

	repo := repositories.NewMaintenanceRepository(docstore.Static(s.store))
	base := NewBaseService(s.bus, zap.NewNop())
	s.technicians = NewTechnicianService(repo, base)
	s.teams = NewTeamService(repo, base)
	s.equipment = NewEquipmentService(repo, base)
	s.requests = NewMaintenanceRequestService(repo, workflow.New(repo), base)
}

func (s *ServicesSuite) recorded() []events.DataChanged {
	s.bus.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.DataChanged(nil), s.changes...)
}

// fleet - команда с одним техником и оборудование за ней.
func (s *ServicesSuite) fleet() (teamID, techID, equipmentID string) {
	techID, err := s.technicians.CreateTechnician(s.ctx, dto.CreateTechnicianDTO{DisplayName: "Alice"})
	s.Require().NoError(err)
	teamID, err = s.teams.CreateTeam(s.ctx, dto.CreateTeamDTO{Name: "Mechanics"})
	s.Require().NoError(err)
	s.Require().NoError(s.teams.SetTechnicians(s.ctx, teamID, dto.SetTeamTechniciansDTO{TechnicianIDs: []string{techID}}))
	equipmentID, err = s.equipment.CreateEquipment(s.ctx, dto.CreateEquipmentDTO{
		Name: "Press", Category: "Machinery", DefaultTeamID: teamID, DefaultTechnicianID: techID,
	})
	s.Require().NoError(err)
	return teamID, techID, equipmentID
}

func (s *ServicesSuite) TestRequiredNames() {
	_, err := s.technicians.CreateTechnician(s.ctx, dto.CreateTechnicianDTO{DisplayName: "  "})
	s.EqualError(err, "Technician name is required")

	_, err = s.teams.CreateTeam(s.ctx, dto.CreateTeamDTO{})
	s.EqualError(err, "Team name is required")
}

func (s *ServicesSuite) TestCreateEquipmentValidation() {
	teamID, techID, _ := s.fleet()
	outsider, err := s.technicians.CreateTechnician(s.ctx, dto.CreateTechnicianDTO{DisplayName: "Bob"})
	s.Require().NoError(err)

	cases := []struct {
		payload dto.CreateEquipmentDTO
		message string
	}{
		{dto.CreateEquipmentDTO{Category: "c", DefaultTeamID: teamID, DefaultTechnicianID: techID}, "Equipment name is required"},
		{dto.CreateEquipmentDTO{Name: "n", DefaultTeamID: teamID, DefaultTechnicianID: techID}, "Equipment category is required"},
		{dto.CreateEquipmentDTO{Name: "n", Category: "c", DefaultTechnicianID: techID}, "Default maintenance team is required"},
		{dto.CreateEquipmentDTO{Name: "n", Category: "c", DefaultTeamID: teamID}, "Default technician is required"},
		{dto.CreateEquipmentDTO{Name: "n", Category: "c", DefaultTeamID: "ghost", DefaultTechnicianID: techID}, "Team not found"},
		{dto.CreateEquipmentDTO{Name: "n", Category: "c", DefaultTeamID: teamID, DefaultTechnicianID: outsider}, "Default technician must be a member of the selected team"},
	}
	for _, tc := range cases {
		_, err := s.equipment.CreateEquipment(s.ctx, tc.payload)
		s.EqualError(err, tc.message)
	}
}

func (s *ServicesSuite) TestCreateEquipmentStoresActiveAndTrimmed() {
	teamID, techID, _ := s.fleet()

	id, err := s.equipment.CreateEquipment(s.ctx, dto.CreateEquipmentDTO{
		Name: " Lathe ", Category: "Machinery", Location: null.StringFrom("  "),
		DefaultTeamID: teamID, DefaultTechnicianID: techID,
	})
	s.Require().NoError(err)

	eq, err := s.equipment.FindEquipment(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Lathe", eq.Name)
	s.Equal(entities.EquipmentActive, eq.Status)
	s.False(eq.Location.Valid)

	_, err = s.equipment.FindEquipment(s.ctx, "ghost")
	s.EqualError(err, "Equipment not found")
}

func (s *ServicesSuite) TestRequestLifecyclePublishesChanges() {
	_, techID, equipmentID := s.fleet()
	s.bus.Wait()
	s.mu.Lock()
	s.changes = nil
	s.mu.Unlock()

	req, err := s.requests.CreateRequest(s.ctx, dto.CreateMaintenanceRequestDTO{
		Type: "corrective", Subject: "Overheating", EquipmentID: equipmentID,
	})
	s.Require().NoError(err)
	s.Equal(null.StringFrom(techID), req.TechnicianID)

	updated, err := s.requests.UpdateStatus(s.ctx, req.ID, dto.UpdateRequestStatusDTO{Status: "in_progress"})
	s.Require().NoError(err)
	s.Equal(entities.StatusInProgress, updated.Status)

	updated, err = s.requests.UpdateStatus(s.ctx, req.ID, dto.UpdateRequestStatusDTO{Status: "scrap"})
	s.Require().NoError(err)
	s.Equal(entities.StatusScrap, updated.Status)

	eq, err := s.equipment.FindEquipment(s.ctx, equipmentID)
	s.Require().NoError(err)
	s.Equal(entities.EquipmentScrapped, eq.Status)

	changes := s.recorded()
	collections := make([]string, 0, len(changes))
	for _, c := range changes {
		collections = append(collections, c.Collection)
	}
	s.ElementsMatch([]string{
		entities.CollectionRequests, entities.CollectionRequests, entities.CollectionRequests, entities.CollectionEquipment,
	}, collections)
}

func (s *ServicesSuite) TestRejectedTransitionPublishesNothing() {
	_, _, equipmentID := s.fleet()
	req, err := s.requests.CreateRequest(s.ctx, dto.CreateMaintenanceRequestDTO{Type: "corrective", Subject: "x", EquipmentID: equipmentID})
	s.Require().NoError(err)
	before := len(s.recorded())

	_, err = s.requests.UpdateStatus(s.ctx, req.ID, dto.UpdateRequestStatusDTO{Status: "repaired", DurationHours: null.Float64From(1)})
	s.EqualError(err, "Invalid status transition: new -> repaired")
	s.True(apperrors.IsInvalidInput(err))
	s.Len(s.recorded(), before)
}

func (s *ServicesSuite) TestGetRequestsByStatus() {
	_, _, equipmentID := s.fleet()
	_, err := s.requests.CreateRequest(s.ctx, dto.CreateMaintenanceRequestDTO{Type: "corrective", Subject: "x", EquipmentID: equipmentID})
	s.Require().NoError(err)

	list, err := s.requests.GetRequests(s.ctx, dto.RequestListFilter{Status: "new", EquipmentID: equipmentID})
	s.Require().NoError(err)
	s.Len(list, 1)

	list, err = s.requests.GetRequests(s.ctx, dto.RequestListFilter{})
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = s.requests.GetRequests(s.ctx, dto.RequestListFilter{Status: "done"})
	s.True(apperrors.IsInvalidInput(err))
}

func (s *ServicesSuite) TestExportRequests() {
	_, _, equipmentID := s.fleet()
	_, err := s.requests.CreateRequest(s.ctx, dto.CreateMaintenanceRequestDTO{Type: "preventive", Subject: "Oil", EquipmentID: equipmentID, ScheduledAt: null.StringFrom("2024-07-01")})
	s.Require().NoError(err)

	content, err := s.requests.ExportRequests(s.ctx)
	s.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	s.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("Subject", rows[0][2])
	s.Equal("Oil", rows[1][2])
	s.Equal("new", rows[1][3])
	s.Equal("Machinery", rows[1][5])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "rejected", outcome(apperrors.NewInvalidInputError("x")))
	assert.Equal(t, "not_found", outcome(apperrors.NewNotFoundError("x")))
	assert.Equal(t, "unavailable", outcome(apperrors.NewUnavailableError("Load", nil)))
}

func TestBaseService_NilBusIsSafe(t *testing.T) {
	base := NewBaseService(nil, zap.NewNop())
	require.NotPanics(t, func() { base.notifyChanged(context.Background(), "equipment", "eq1", events.ActionCreated) })
}
