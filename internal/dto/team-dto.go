package dto

type CreateTeamDTO struct {
	Name string `json:"name" validate:"max=200"`
}

type SetTeamTechniciansDTO struct {
	TechnicianIDs []string `json:"technicianIds" validate:"dive,required"`
}

type CreateTechnicianDTO struct {
	DisplayName string `json:"displayName" validate:"max=200"`
}

type CreatedDTO struct {
	ID string `json:"id"`
}
