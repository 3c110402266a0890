package timepolicy

import "time"

type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyUpcoming Urgency = "upcoming"
	UrgencyNormal   Urgency = "normal"
)

func (u Urgency) String() string {
	return string(u)
}

// Thresholds bound the urgent and upcoming classes in days, both inclusive.
type Thresholds struct {
	Urgent   int
	Upcoming int
}

var DefaultThresholds = Thresholds{Urgent: 3, Upcoming: 7}

func (t Thresholds) ClassifyDays(daysUntil int) Urgency {
	switch {
	case daysUntil < 0:
		return UrgencyOverdue
	case daysUntil <= t.Urgent:
		return UrgencyUrgent
	case daysUntil <= t.Upcoming:
		return UrgencyUpcoming
	default:
		return UrgencyNormal
	}
}

func (t Thresholds) Classify(target, now time.Time) Urgency {
	return t.ClassifyDays(DaysUntil(target, now))
}

func Classify(target, now time.Time) Urgency {
	return DefaultThresholds.Classify(target, now)
}

func ClassifyDays(daysUntil int) Urgency {
	return DefaultThresholds.ClassifyDays(daysUntil)
}
