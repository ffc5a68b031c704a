package depreciation

import "time"

// ScheduleEntry is one month of a projected depreciation schedule.
type ScheduleEntry struct {
	Period      string  `json:"period"`
	PeriodValue float64 `json:"period_value"`
	Accumulated float64 `json:"accumulated"`
	Remaining   float64 `json:"remaining"`
}

// MonthlySchedule projects the asset's value month by month from its
// acquisition date until fully depreciated. Periods are labelled
// YYYY-MM. A non-positive purchase value yields an empty schedule.
func (e *Engine) MonthlySchedule(purchaseValue float64, acquiredAt time.Time) []ScheduleEntry {
	if purchaseValue <= 0 {
		return nil
	}

	months := e.usefulLifeYears * 12
	entries := make([]ScheduleEntry, 0, months)
	previous := purchaseValue
	for i := 1; i <= months; i++ {
		at := acquiredAt.AddDate(0, i, 0)
		remaining := e.CurrentValue(purchaseValue, acquiredAt, at)
		entries = append(entries, ScheduleEntry{
			Period:      at.Format("2006-01"),
			PeriodValue: previous - remaining,
			Accumulated: purchaseValue - remaining,
			Remaining:   remaining,
		})
		previous = remaining
		if remaining <= 0 {
			break
		}
	}
	return entries
}
