package domain

import "time"

// Tariff is a facility's two-tier hourly rate: one price for the first hour,
// another for every additional started hour.
type Tariff struct {
	FirstHour float64
	ExtraHour float64
}

// BilledHours rounds the elapsed time between entry and exit up to whole
// hours. Any stay bills at least one hour, a zero-length stay included.
func BilledHours(entry, exit time.Time) int64 {
	elapsed := exit.Sub(entry)
	if elapsed <= 0 {
		return 1
	}
	hours := int64(elapsed / time.Hour)
	if elapsed%time.Hour != 0 {
		hours++
	}
	return hours
}

// Fee prices a stay of the given billed hours: the first-hour rate, plus the
// extra-hour rate for each hour beyond the first. No rounding, tax or
// proration is applied.
func (t Tariff) Fee(hours int64) float64 {
	fee := t.FirstHour
	if hours > 1 {
		fee += float64(hours-1) * t.ExtraHour
	}
	return fee
}

// FeeForStay combines BilledHours and Tariff.Fee for a single entry/exit pair.
func (t Tariff) FeeForStay(entry, exit time.Time) (hours int64, fee float64) {
	hours = BilledHours(entry, exit)
	return hours, t.Fee(hours)
}
