package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type OwnerType string

const (
	OwnerDepartment OwnerType = "department"
	OwnerEmployee   OwnerType = "employee"
)

type EquipmentStatus string

const (
	EquipmentActive   EquipmentStatus = "active"
	EquipmentScrapped EquipmentStatus = "scrapped"
)

type Equipment struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	SerialNumber        null.String     `json:"serialNumber"`
	Category            null.String     `json:"category"`
	Location            null.String     `json:"location"`
	OwnerType           null.String     `json:"ownerType"`
	OwnerName           null.String     `json:"ownerName"`
	PurchaseDate        null.String     `json:"purchaseDate"`
	WarrantyUntil       null.String     `json:"warrantyUntil"`
	DefaultTeamID       null.String     `json:"defaultTeamId"`
	DefaultTechnicianID null.String     `json:"defaultTechnicianId"`
	Status              EquipmentStatus `json:"status"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}
