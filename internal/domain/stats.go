package domain

import "time"

// Aggregates in this file are plain folds over already-loaded slices; the
// repositories hand over full record sets and the numbers are derived here,
// not in SQL.

// Occupancy is the live slot picture for one facility.
type Occupancy struct {
	TotalSlots    int `json:"total_slots"`
	OccupiedCount int `json:"occupied_count"`
	// Available may go negative when totalSlots was edited below the current
	// occupancy; shown as-is rather than clamped.
	AvailableCount int     `json:"available_count"`
	BookedSlots    []int64 `json:"booked_slots"`
}

// OccupancyOf derives the occupancy of a facility from its session set.
// Booked slot numbers are exactly those of the open sessions; closed
// sessions release their slot by the status flip alone.
func OccupancyOf(totalSlots int, sessions []VehicleSession) Occupancy {
	occ := Occupancy{TotalSlots: totalSlots}
	for _, s := range sessions {
		if !s.Open() {
			continue
		}
		occ.OccupiedCount++
		if s.SlotNumber.Valid {
			occ.BookedSlots = append(occ.BookedSlots, s.SlotNumber.Int64)
		}
	}
	occ.AvailableCount = totalSlots - occ.OccupiedCount
	return occ
}

// SlotBooked reports whether slot is held by any open session.
func SlotBooked(sessions []VehicleSession, slot int64) bool {
	for _, s := range sessions {
		if s.Open() && s.SlotNumber.Valid && s.SlotNumber.Int64 == slot {
			return true
		}
	}
	return false
}

// HistorySummary heads a history view: how many closed sessions matched, the
// revenue they brought in, and the mean billed duration.
type HistorySummary struct {
	TotalVehicles    int     `json:"total_vehicles"`
	TotalRevenue     float64 `json:"total_revenue"`
	AvgDurationHours float64 `json:"avg_duration_hours"`
}

func SummarizeHistory(sessions []VehicleSession) HistorySummary {
	sum := HistorySummary{TotalVehicles: len(sessions)}
	var hours int64
	for _, s := range sessions {
		if s.Fee.Valid {
			sum.TotalRevenue += s.Fee.Float64
		}
		if s.DurationHours.Valid {
			hours += s.DurationHours.Int64
		}
	}
	if len(sessions) > 0 {
		sum.AvgDurationHours = float64(hours) / float64(len(sessions))
	}
	return sum
}

// FacilityAnalytics is the owner dashboard: live occupancy plus today's
// figures.
type FacilityAnalytics struct {
	Occupancy
	TodayRevenue  float64          `json:"today_revenue"`
	TodayEntries  []VehicleSession `json:"today_entries"`
	EntriesByHour [24]int          `json:"entries_by_hour"`
}

// AnalyzeFacility folds a facility's sessions into its dashboard figures.
// "Today" is the calendar day containing now, in now's location.
func AnalyzeFacility(totalSlots int, sessions []VehicleSession, now time.Time) FacilityAnalytics {
	a := FacilityAnalytics{Occupancy: OccupancyOf(totalSlots, sessions)}
	for _, s := range sessions {
		if s.ExitTime.Valid && s.Fee.Valid && SameDay(now, s.ExitTime.Time) {
			a.TodayRevenue += s.Fee.Float64
		}
		if SameDay(now, s.EntryTime) {
			a.TodayEntries = append(a.TodayEntries, s)
			a.EntriesByHour[s.EntryTime.In(now.Location()).Hour()]++
		}
	}
	return a
}

// FacilityBreakdown is one facility's session counts inside the admin
// overview.
type FacilityBreakdown struct {
	Facility      Facility       `json:"facility"`
	TotalSessions int            `json:"total_sessions"`
	ParkedCount   int            `json:"parked_count"`
	ExitedCount   int            `json:"exited_count"`
	ByVehicleType map[string]int `json:"by_vehicle_type"`
}

// AdminOverview is the cross-facility rollup shown on the admin dashboard.
type AdminOverview struct {
	TotalFacilities int                 `json:"total_facilities"`
	TotalOwners     int                 `json:"total_owners"`
	TotalSessions   int                 `json:"total_sessions"`
	ActiveSessions  int                 `json:"active_sessions"`
	TotalRevenue    float64             `json:"total_revenue"`
	Facilities      []FacilityBreakdown `json:"facilities"`
}

// BuildAdminOverview folds the full facility and session sets into the admin
// rollup. Revenue sums every present fee; open sessions carry none and so
// never contribute.
func BuildAdminOverview(facilities []Facility, sessions []VehicleSession) AdminOverview {
	ov := AdminOverview{
		TotalFacilities: len(facilities),
		TotalSessions:   len(sessions),
	}

	owners := make(map[string]struct{}, len(facilities))
	for _, f := range facilities {
		owners[f.OwnerID] = struct{}{}
	}
	ov.TotalOwners = len(owners)

	perFacility := make(map[string]*FacilityBreakdown, len(facilities))
	for _, f := range facilities {
		fb := &FacilityBreakdown{Facility: f, ByVehicleType: map[string]int{}}
		perFacility[f.ID] = fb
	}

	for _, s := range sessions {
		if s.Open() {
			ov.ActiveSessions++
		}
		if s.Fee.Valid {
			ov.TotalRevenue += s.Fee.Float64
		}
		fb, ok := perFacility[s.FacilityID]
		if !ok {
			continue // session of a deleted facility; counted in totals only
		}
		fb.TotalSessions++
		if s.Open() {
			fb.ParkedCount++
		} else {
			fb.ExitedCount++
		}
		vt := s.VehicleType
		if vt == "" {
			vt = "Unknown"
		}
		fb.ByVehicleType[vt]++
	}

	ov.Facilities = make([]FacilityBreakdown, 0, len(facilities))
	for _, f := range facilities {
		ov.Facilities = append(ov.Facilities, *perFacility[f.ID])
	}
	return ov
}
