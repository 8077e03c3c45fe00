package domain

import (
	"fmt"
	"time"
)

type StatsPeriod string

const (
	PeriodDay   StatsPeriod = "day"
	PeriodWeek  StatsPeriod = "week"
	PeriodMonth StatsPeriod = "month"
	PeriodYear  StatsPeriod = "year"
	PeriodAll   StatsPeriod = "all"
)

func ParsePeriod(s string) (StatsPeriod, error) {
	switch StatsPeriod(s) {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return StatsPeriod(s), nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Since returns the start of the period ending at now; zero time for PeriodAll.
func (p StatsPeriod) Since(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.Add(-24 * time.Hour)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	}
	return time.Time{}
}

type DriverStats struct {
	DriverID          string      `json:"driver_id"`
	Period            StatsPeriod `json:"period"`
	Since             *time.Time  `json:"since,omitempty"`
	Assigned          int64       `json:"assigned"`
	Accepted          int64       `json:"accepted"`
	Declined          int64       `json:"declined"`
	Completed         int64       `json:"completed"`
	Rescued           int64       `json:"rescued"`
	TreatmentComplete int64       `json:"treatment_complete"`
	Cancelled         int64       `json:"cancelled"`
	Active            int64       `json:"active"`
}

type StatsRequest struct {
	DriverID string `validate:"required"`
	Period   StatsPeriod
}
