package dto

import "github.com/noah-isme/school-units-api/internal/models"

// CreateHomologationRequest appends an event to a unit's approval history.
type CreateHomologationRequest struct {
	Action      models.HomologationAction `json:"action" validate:"required"`
	Reason      *string                   `json:"reason"`
	PerformedBy *string                   `json:"performed_by"`
}
