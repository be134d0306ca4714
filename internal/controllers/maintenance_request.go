package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/services"
	"gear-guard/pkg/api"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MaintenanceRequestController struct {
	requestService services.MaintenanceRequestServiceInterface
	logger         *zap.Logger
}

func NewMaintenanceRequestController(service services.MaintenanceRequestServiceInterface, logger *zap.Logger) *MaintenanceRequestController {
	return &MaintenanceRequestController{requestService: service, logger: logger}
}

// GetRequests - ?status= отдаёт колонку канбана (можно сузить ?equipment_id=), без статуса - все заявки.
func (c *MaintenanceRequestController) GetRequests(ctx echo.Context) error {
	filter := dto.RequestListFilter{
		Status:      ctx.QueryParam("status"),
		EquipmentID: ctx.QueryParam("equipment_id"),
	}
	res, err := c.requestService.GetRequests(ctx.Request().Context(), filter)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Список заявок получен", res)
}

func (c *MaintenanceRequestController) GetOpenRequests(ctx echo.Context) error {
	res, err := c.requestService.GetOpenRequests(ctx.Request().Context())
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Открытые заявки получены", res)
}

func (c *MaintenanceRequestController) GetPreventiveRequests(ctx echo.Context) error {
	res, err := c.requestService.GetPreventiveRequests(ctx.Request().Context())
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Плановые заявки получены", res)
}

func (c *MaintenanceRequestController) FindRequest(ctx echo.Context) error {
	res, err := c.requestService.FindRequest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заявка найдена", res)
}

func (c *MaintenanceRequestController) CreateRequest(ctx echo.Context) error {
	var payload dto.CreateMaintenanceRequestDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requestService.CreateRequest(ctx.Request().Context(), payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Заявка создана", res)
}

func (c *MaintenanceRequestController) UpdateStatus(ctx echo.Context) error {
	var payload dto.UpdateRequestStatusDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requestService.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Статус заявки обновлён", res)
}

func (c *MaintenanceRequestController) AssignTechnician(ctx echo.Context) error {
	var payload dto.AssignTechnicianDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requestService.AssignTechnician(ctx.Request().Context(), ctx.Param("id"), payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Техник назначен", res)
}

func (c *MaintenanceRequestController) ExportRequests(ctx echo.Context) error {
	content, err := c.requestService.ExportRequests(ctx.Request().Context())
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	fileName := fmt.Sprintf("maintenance_requests_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	return ctx.Blob(http.StatusOK, xlsxContentType, content)
}
