package dto

import "github.com/aarondl/null/v8"

type CreateMaintenanceRequestDTO struct {
	Type         string      `json:"type" validate:"required,oneof=corrective preventive"`
	Subject      string      `json:"subject" validate:"required,not_blank,max=200"`
	Description  null.String `json:"description" validate:"omitempty,max=2000"`
	EquipmentID  string      `json:"equipmentId" validate:"required"`
	TechnicianID null.String `json:"technicianId"`
	ScheduledAt  null.String `json:"scheduledAt" validate:"omitempty,iso_date"`
}

// UpdateRequestStatusDTO - переход по статусной машине.
// durationHours не проверяется здесь: правило "обязательно и >= 0" живёт в workflow.
type UpdateRequestStatusDTO struct {
	Status        string       `json:"status" validate:"required"`
	TechnicianID  null.String  `json:"technicianId"`
	DurationHours null.Float64 `json:"durationHours"`
}

type AssignTechnicianDTO struct {
	TechnicianID string `json:"technicianId" validate:"required"`
}

type RequestListFilter struct {
	Status      string
	EquipmentID string
}
