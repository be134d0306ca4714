package dto

import "github.com/aarondl/null/v8"

type CreateEquipmentDTO struct {
	Name                string      `json:"name" validate:"max=200"`
	SerialNumber        null.String `json:"serialNumber" validate:"omitempty,max=100"`
	Category            string      `json:"category" validate:"max=100"`
	Location            null.String `json:"location" validate:"omitempty,max=200"`
	OwnerType           null.String `json:"ownerType" validate:"omitempty,oneof=department employee"`
	OwnerName           null.String `json:"ownerName" validate:"omitempty,max=200"`
	PurchaseDate        null.String `json:"purchaseDate" validate:"omitempty,iso_date"`
	WarrantyUntil       null.String `json:"warrantyUntil" validate:"omitempty,iso_date"`
	DefaultTeamID       string      `json:"defaultTeamId"`
	DefaultTechnicianID string      `json:"defaultTechnicianId"`
}
