package domain

import "time"

type Facility struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"` // category label, e.g. "Mall", "Office"
	TotalSlots    int       `json:"total_slots"`
	RateFirstHour float64   `json:"rate_first_hour"`
	RateExtraHour float64   `json:"rate_extra_hour"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (f *Facility) Tariff() Tariff {
	return Tariff{FirstHour: f.RateFirstHour, ExtraHour: f.RateExtraHour}
}

type FacilityDTO struct {
	Name          string  `json:"name" binding:"required"`
	Type          string  `json:"type" binding:"required"`
	TotalSlots    int     `json:"total_slots" binding:"required,gt=0"`
	RateFirstHour float64 `json:"rate_first_hour" binding:"min=0"`
	RateExtraHour float64 `json:"rate_extra_hour" binding:"min=0"`
}
