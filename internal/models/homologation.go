package models

import "time"

// HomologationAction is both an event kind and the derived approval state of a unit.
type HomologationAction string

const (
	HomologationHomologated   HomologationAction = "HOMOLOGATED"
	HomologationUnhomologated HomologationAction = "UNHOMOLOGATED"
)

// Valid reports whether the action is one of the known values.
func (a HomologationAction) Valid() bool {
	return a == HomologationHomologated || a == HomologationUnhomologated
}

// HomologationEvent is an immutable entry of a unit's approval history.
type HomologationEvent struct {
	ID           int64              `db:"id" json:"id"`
	SchoolUnitID int64              `db:"school_unit_id" json:"school_unit_id"`
	Action       HomologationAction `db:"action" json:"action"`
	Reason       *string            `db:"reason" json:"reason"`
	PerformedBy  *string            `db:"performed_by" json:"performed_by"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}

// CurrentHomologationState derives the approval state from a history ordered newest
// first. A unit without events is not homologated.
func CurrentHomologationState(history []HomologationEvent) HomologationAction {
	if len(history) == 0 {
		return HomologationUnhomologated
	}
	return history[0].Action
}

// NextHomologationAction returns the only action that toggles the given state.
func NextHomologationAction(state HomologationAction) HomologationAction {
	if state == HomologationHomologated {
		return HomologationUnhomologated
	}
	return HomologationHomologated
}

// HomologationStatus summarises a unit's approval state for clients.
type HomologationStatus struct {
	SchoolUnitID int64              `json:"school_unit_id"`
	State        HomologationAction `json:"state"`
	NextAction   HomologationAction `json:"next_action"`
	LastEvent    *HomologationEvent `json:"last_event"`
}
