package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type RequestType string

const (
	RequestTypeCorrective RequestType = "corrective"
	RequestTypePreventive RequestType = "preventive"
)

func (t RequestType) Valid() bool {
	return t == RequestTypeCorrective || t == RequestTypePreventive
}

type RequestStatus string

const (
	StatusNew        RequestStatus = "new"
	StatusInProgress RequestStatus = "in_progress"
	StatusRepaired   RequestStatus = "repaired"
	StatusScrap      RequestStatus = "scrap"
)

// AllStatuses - все состояния заявки в порядке жизненного цикла.
var AllStatuses = []RequestStatus{StatusNew, StatusInProgress, StatusRepaired, StatusScrap}

// OpenStatuses - заявки, по которым ещё идёт работа.
var OpenStatuses = []RequestStatus{StatusNew, StatusInProgress}

func (s RequestStatus) IsFinal() bool {
	return s == StatusRepaired || s == StatusScrap
}

const UncategorizedEquipment = "Uncategorized"

type MaintenanceRequest struct {
	ID                string        `json:"id"`
	Type              RequestType   `json:"type"`
	Subject           string        `json:"subject"`
	Description       null.String   `json:"description"`
	EquipmentID       string        `json:"equipmentId"`
	EquipmentCategory null.String   `json:"equipmentCategory"`
	TeamID            string        `json:"teamId"`
	TechnicianID      null.String   `json:"technicianId"`
	ScheduledAt       null.String   `json:"scheduledAt"`
	DurationHours     null.Float64  `json:"durationHours"`
	Status            RequestStatus `json:"status"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// RequestPatch - частичное обновление заявки. Незаданные поля не трогаются.
type RequestPatch struct {
	Status        *RequestStatus
	TechnicianID  null.String
	DurationHours null.Float64
}
