package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/controllers"
	"gear-guard/internal/repositories"
	"gear-guard/internal/services"
	"gear-guard/internal/workflow"
	"gear-guard/pkg/eventbus"
	"gear-guard/pkg/websocket"
)

// Dependencies - то, что собирается в main и нужно маршрутам.
type Dependencies struct {
	Repo           repositories.MaintenanceRepositoryInterface
	Bus            *eventbus.Bus
	Hub            *websocket.Hub
	AllowedOrigins []string
	Logger         *zap.Logger
}

func InitRouter(e *echo.Echo, deps Dependencies) {
	deps.Logger.Info("InitRouter: Начало создания маршрутов")

	// --- 1. СЕРВИСЫ ---
	base := services.NewBaseService(deps.Bus, deps.Logger)
	engine := workflow.New(deps.Repo, workflow.WithLogger(deps.Logger.Named("workflow")))

	technicianService := services.NewTechnicianService(deps.Repo, base)
	teamService := services.NewTeamService(deps.Repo, base)
	equipmentService := services.NewEquipmentService(deps.Repo, base)
	requestService := services.NewMaintenanceRequestService(deps.Repo, engine, base)
	healthService := services.NewHealthService(deps.Repo)

	// --- 2. РОУТЕРЫ ---
	api := e.Group("/api")

	runSystemRouter(e, healthService, deps.Hub, deps.AllowedOrigins, deps.Logger)
	runTechnicianRouter(api, technicianService, deps.Logger)
	runTeamRouter(api, teamService, deps.Logger)
	runEquipmentRouter(api, equipmentService, deps.Logger)
	runMaintenanceRequestRouter(api, requestService, deps.Logger)

	deps.Logger.Info("InitRouter: Создание маршрутов завершено")
}

func runTechnicianRouter(g *echo.Group, service services.TechnicianServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewTechnicianController(service, logger)
	g.GET("/technicians", ctrl.GetTechnicians)
	g.POST("/technicians", ctrl.CreateTechnician)
}

func runTeamRouter(g *echo.Group, service services.TeamServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewTeamController(service, logger)
	g.GET("/teams", ctrl.GetTeams)
	g.POST("/teams", ctrl.CreateTeam)
	g.PUT("/teams/:id/technicians", ctrl.SetTechnicians)
}

func runEquipmentRouter(g *echo.Group, service services.EquipmentServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewEquipmentController(service, logger)
	g.GET("/equipment", ctrl.GetEquipments)
	g.POST("/equipment", ctrl.CreateEquipment)
	g.GET("/equipment/:id", ctrl.FindEquipment)
}

func runMaintenanceRequestRouter(g *echo.Group, service services.MaintenanceRequestServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewMaintenanceRequestController(service, logger)
	g.GET("/requests", ctrl.GetRequests)
	g.GET("/requests/open", ctrl.GetOpenRequests)
	g.GET("/requests/preventive", ctrl.GetPreventiveRequests)
	g.GET("/requests/export", ctrl.ExportRequests)
	g.GET("/requests/:id", ctrl.FindRequest)
	g.POST("/requests", ctrl.CreateRequest)
	g.POST("/requests/:id/status", ctrl.UpdateStatus)
	g.PUT("/requests/:id/technician", ctrl.AssignTechnician)
}
