package repositories

import (
	"time"

	"github.com/aarondl/null/v8"

	"gear-guard/internal/entities"
	"gear-guard/pkg/docstore"
	"gear-guard/pkg/utils"
)

// --- чтение полей документа ---

func str(doc docstore.Document, key string) string {
	if s, ok := doc[key].(string); ok {
		return s
	}
	return ""
}

func nullStr(doc docstore.Document, key string) null.String {
	if s, ok := doc[key].(string); ok {
		return null.StringFrom(s)
	}
	return null.String{}
}

func nullFloat(doc docstore.Document, key string) null.Float64 {
	switch v := docstore.Normalize(doc[key]).(type) {
	case float64:
		return null.Float64From(v)
	}
	return null.Float64{}
}

func timestamp(doc docstore.Document, key string) time.Time {
	t, _ := utils.ParseTimestamp(str(doc, key))
	return t
}

// --- запись полей: NULL хранится как null, а не как отсутствующее поле ---

func nullable(s null.String) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

func nullableFloat(f null.Float64) any {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

// --- сущности ---

func technicianFromSnapshot(snap *docstore.Snapshot) *entities.Technician {
	return &entities.Technician{
		ID:          snap.ID,
		DisplayName: str(snap.Data, "displayName"),
		AvatarURL:   nullStr(snap.Data, "avatarUrl"),
		CreatedAt:   timestamp(snap.Data, "createdAt"),
		UpdatedAt:   timestamp(snap.Data, "updatedAt"),
	}
}

func teamFromSnapshot(snap *docstore.Snapshot) *entities.Team {
	ids := docstore.StringSlice(snap.Data["technicianIds"])
	if ids == nil {
		ids = []string{}
	}
	return &entities.Team{
		ID:            snap.ID,
		Name:          str(snap.Data, "name"),
		TechnicianIDs: ids,
		CreatedAt:     timestamp(snap.Data, "createdAt"),
		UpdatedAt:     timestamp(snap.Data, "updatedAt"),
	}
}

func equipmentFromSnapshot(snap *docstore.Snapshot) *entities.Equipment {
	status := entities.EquipmentStatus(str(snap.Data, "status"))
	if status == "" {
		status = entities.EquipmentActive
	}
	return &entities.Equipment{
		ID:                  snap.ID,
		Name:                str(snap.Data, "name"),
		SerialNumber:        nullStr(snap.Data, "serialNumber"),
		Category:            nullStr(snap.Data, "category"),
		Location:            nullStr(snap.Data, "location"),
		OwnerType:           nullStr(snap.Data, "ownerType"),
		OwnerName:           nullStr(snap.Data, "ownerName"),
		PurchaseDate:        nullStr(snap.Data, "purchaseDate"),
		WarrantyUntil:       nullStr(snap.Data, "warrantyUntil"),
		DefaultTeamID:       nullStr(snap.Data, "defaultTeamId"),
		DefaultTechnicianID: nullStr(snap.Data, "defaultTechnicianId"),
		Status:              status,
		CreatedAt:           timestamp(snap.Data, "createdAt"),
		UpdatedAt:           timestamp(snap.Data, "updatedAt"),
	}
}

func equipmentToDocument(e entities.Equipment) docstore.Document {
	return docstore.Document{
		"name":                e.Name,
		"serialNumber":        nullable(e.SerialNumber),
		"category":            nullable(e.Category),
		"location":            nullable(e.Location),
		"ownerType":           nullable(e.OwnerType),
		"ownerName":           nullable(e.OwnerName),
		"purchaseDate":        nullable(e.PurchaseDate),
		"warrantyUntil":       nullable(e.WarrantyUntil),
		"defaultTeamId":       nullable(e.DefaultTeamID),
		"defaultTechnicianId": nullable(e.DefaultTechnicianID),
		"status":              string(e.Status),
		"createdAt":           utils.FormatTimestamp(e.CreatedAt),
		"updatedAt":           utils.FormatTimestamp(e.UpdatedAt),
	}
}

func requestFromSnapshot(snap *docstore.Snapshot) *entities.MaintenanceRequest {
	return &entities.MaintenanceRequest{
		ID:                snap.ID,
		Type:              entities.RequestType(str(snap.Data, "type")),
		Subject:           str(snap.Data, "subject"),
		Description:       nullStr(snap.Data, "description"),
		EquipmentID:       str(snap.Data, "equipmentId"),
		EquipmentCategory: nullStr(snap.Data, "equipmentCategory"),
		TeamID:            str(snap.Data, "teamId"),
		TechnicianID:      nullStr(snap.Data, "technicianId"),
		ScheduledAt:       nullStr(snap.Data, "scheduledAt"),
		DurationHours:     nullFloat(snap.Data, "durationHours"),
		Status:            entities.RequestStatus(str(snap.Data, "status")),
		CreatedAt:         timestamp(snap.Data, "createdAt"),
		UpdatedAt:         timestamp(snap.Data, "updatedAt"),
	}
}

func requestToDocument(r entities.MaintenanceRequest) docstore.Document {
	return docstore.Document{
		"type":              string(r.Type),
		"subject":           r.Subject,
		"description":       nullable(r.Description),
		"equipmentId":       r.EquipmentID,
		"equipmentCategory": nullable(r.EquipmentCategory),
		"teamId":            r.TeamID,
		"technicianId":      nullable(r.TechnicianID),
		"scheduledAt":       nullable(r.ScheduledAt),
		"durationHours":     nullableFloat(r.DurationHours),
		"status":            string(r.Status),
		"createdAt":         utils.FormatTimestamp(r.CreatedAt),
		"updatedAt":         utils.FormatTimestamp(r.UpdatedAt),
	}
}

func requestPatchToDocument(p entities.RequestPatch, updatedAt time.Time) docstore.Document {
	doc := docstore.Document{"updatedAt": utils.FormatTimestamp(updatedAt)}
	if p.Status != nil {
		doc["status"] = string(*p.Status)
	}
	if p.TechnicianID.Valid {
		doc["technicianId"] = p.TechnicianID.String
	}
	if p.DurationHours.Valid {
		doc["durationHours"] = p.DurationHours.Float64
	}
	return doc
}
