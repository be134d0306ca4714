package entities

// Имена коллекций в документном хранилище.
const (
	CollectionTechnicians = "technicians"
	CollectionTeams       = "maintenanceTeams"
	CollectionEquipment   = "equipment"
	CollectionRequests    = "maintenanceRequests"
)
