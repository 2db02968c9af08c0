package domain

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Pacing compares actual progress with the progress needed to hit the target date.
type Pacing struct {
	TargetFinishDate time.Time `json:"targetFinishDate"`
	DaysRemaining    int       `json:"daysRemaining"`
	// DaysDifference is positive when ahead of plan and negative when behind, in days.
	DaysDifference   int     `json:"daysDifference"`
	OnTrack          bool    `json:"onTrack"`
	Overdue          bool    `json:"overdue"`
	ExpectedProgress float64 `json:"expectedProgress"`
	ActualProgress   float64 `json:"actualProgress"`
	// PercentPerDayNeeded is nil once the target date has passed.
	PercentPerDayNeeded *float64 `json:"pagesPerDayNeeded"`
}

// ComputePacing returns nil unless the book is being read and has a target date.
//
// Expected progress rises linearly from the anchor (when the target was set, at
// the progress the reader had then) to 100% at the target date. Days difference
// divides the gap between actual and expected progress by that planned daily rate.
func ComputePacing(s *BookState, now time.Time) *Pacing {
	if s == nil || s.Status != StatusReading || s.TargetFinishDate == nil {
		return nil
	}

	target := *s.TargetFinishDate
	anchor, baseline := s.pacingAnchor()

	totalDays := max(1, math.Ceil(float64(target.Sub(anchor))/float64(day)))
	elapsed := max(0, min(totalDays, float64(now.Sub(anchor))/float64(day)))
	expected := baseline + (100-baseline)*elapsed/totalDays
	plannedRate := (100 - baseline) / totalDays
	actual := s.ProgressPercent

	p := &Pacing{
		TargetFinishDate: target,
		DaysRemaining:    int(math.Ceil(float64(target.Sub(now)) / float64(day))),
		ExpectedProgress: RoundOneDecimal(expected),
		ActualProgress:   actual,
	}

	if p.DaysRemaining > 0 {
		needed := RoundOneDecimal(max(0, 100-actual) / float64(p.DaysRemaining))
		p.PercentPerDayNeeded = &needed
	} else {
		p.Overdue = true
	}

	if plannedRate > 0 {
		p.DaysDifference = int(math.Ceil((actual - expected) / plannedRate))
	}
	p.OnTrack = p.DaysDifference >= 0

	return p
}

func (s *BookState) pacingAnchor() (time.Time, float64) {
	switch {
	case s.TargetSetAt != nil:
		return *s.TargetSetAt, s.TargetBaselinePercent
	case s.StartDate != nil:
		return *s.StartDate, 0
	default:
		return s.CreatedAt, 0
	}
}
