package overdue

import (
	"donorly/internal/engine/donations"
	"donorly/internal/engine/schedule"
)

type Severity string

const (
	SeverityHigh   Severity = "high"   // more than 30 days
	SeverityMedium Severity = "medium" // more than 14 days
	SeverityLow    Severity = "low"
)

type Entry struct {
	Pledge      *donations.Donation `json:"pledge"`
	DaysOverdue int                 `json:"days_overdue"`
	Severity    Severity            `json:"severity"`
}

// Scan picks out the active pledges whose next_due has elapsed as of the
// given date. Paused and cancelled pledges never appear. Read-only; bulk
// follow-up actions go through the lifecycle service.
func Scan(pledges []*donations.Donation, asOf schedule.Date) []Entry {
	var entries []Entry
	for _, p := range pledges {
		if !p.IsPledge() || p.Status != donations.StatusActive || p.NextDue == nil {
			continue
		}
		if !p.NextDue.Before(asOf) {
			continue
		}
		days := schedule.DaysBetween(*p.NextDue, asOf)
		entries = append(entries, Entry{
			Pledge:      p,
			DaysOverdue: days,
			Severity:    classify(days),
		})
	}
	return entries
}

func classify(days int) Severity {
	switch {
	case days > 30:
		return SeverityHigh
	case days > 14:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
