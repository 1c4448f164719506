package domain

import (
	"strings"
	"time"

	"gopkg.in/guregu/null.v4"
)

type SessionStatus string

const (
	StatusIn  SessionStatus = "IN"
	StatusOut SessionStatus = "OUT"
)

// VehicleSession is one parking visit: opened IN on entry, flipped to OUT
// exactly once on exit. ExitTime, DurationHours and Fee are set together at
// that flip and never mutated afterwards.
type VehicleSession struct {
	ID            string        `json:"id"`
	FacilityID    string        `json:"facility_id"`
	VehicleNumber string        `json:"vehicle_number"`
	VehicleType   string        `json:"vehicle_type"`
	DriverName    null.String   `json:"driver_name"`
	SlotNumber    null.Int      `json:"slot_number"`
	EntryTime     time.Time     `json:"entry_time"`
	ExitTime      null.Time     `json:"exit_time"`
	DurationHours null.Int      `json:"duration_hours"`
	Fee           null.Float    `json:"fee"`
	Status        SessionStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (s *VehicleSession) Open() bool { return s.Status == StatusIn }

type VehicleEntryDTO struct {
	VehicleNumber string `json:"vehicle_number" binding:"required"`
	VehicleType   string `json:"vehicle_type" binding:"required,oneof=Car Bike Truck"`
	DriverName    string `json:"driver_name"`
	SlotNumber    int    `json:"slot_number" binding:"required,gt=0"`
}

// NormalizeVehicleNumber upper-cases and trims a plate the way every lookup
// and duplicate check expects to see it stored.
func NormalizeVehicleNumber(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
