package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"gear-guard/internal/entities"
	"gear-guard/pkg/utils"
)

const exportSheet = "Requests"

var exportHeaders = []interface{}{
	"ID", "Type", "Subject", "Status", "Equipment", "Category", "Team", "Technician",
	"Scheduled", "Duration (h)", "Created", "Updated",
}

func requestRow(r entities.MaintenanceRequest) []interface{} {
	var duration interface{}
	if r.DurationHours.Valid {
		duration = r.DurationHours.Float64
	}
	return []interface{}{
		r.ID, string(r.Type), r.Subject, string(r.Status), r.EquipmentID, optional(r.EquipmentCategory),
		r.TeamID, optional(r.TechnicianID), optional(r.ScheduledAt), duration,
		utils.FormatTimestamp(r.CreatedAt), utils.FormatTimestamp(r.UpdatedAt),
	}
}

// ExportRequests - все заявки (как в общем списке) одной таблицей, без агрегатов.
func (s *MaintenanceRequestService) ExportRequests(ctx context.Context) ([]byte, error) {
	requests, err := s.repo.ListAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	return buildRequestsWorkbook(requests)
}

func buildRequestsWorkbook(requests []entities.MaintenanceRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i, r := range requests {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := requestRow(r)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("строка %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(exportSheet, "C", "C", 40)
	_ = f.SetColWidth(exportSheet, "K", "L", 26)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
