package domain

import "time"

// ChangeNotification is pushed over the websocket whenever a record is
// written, so connected clients can re-fetch the affected view instead of
// polling.
type ChangeNotification struct {
	Collection string    `json:"collection"` // "facilities", "vehicle_sessions", "users", "admins"
	Action     string    `json:"action"`     // "created", "updated", "deleted"
	ID         string    `json:"id"`
	FacilityID string    `json:"facility_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	CollectionFacilities = "facilities"
	CollectionSessions   = "vehicle_sessions"
	CollectionUsers      = "users"
	CollectionAdmins     = "admins"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)
