package domain

import (
	"fmt"
	"strings"
)

type IncidentStatus string

const (
	StatusPendingAssignment IncidentStatus = "PendingAssignment"
	StatusDriverAssigned    IncidentStatus = "DriverAssigned"
	StatusDriverEnRoute     IncidentStatus = "DriverEnRoute"
	StatusDogPickedUp       IncidentStatus = "DogPickedUp"
	StatusEnRouteToHospital IncidentStatus = "EnRouteToHospital"
	StatusAtHospital        IncidentStatus = "AtHospital"
	StatusTreatmentComplete IncidentStatus = "TreatmentComplete"
	StatusRescued           IncidentStatus = "Rescued"
	StatusCancelled         IncidentStatus = "Cancelled"
)

var AllStatuses = []IncidentStatus{
	StatusPendingAssignment,
	StatusDriverAssigned,
	StatusDriverEnRoute,
	StatusDogPickedUp,
	StatusEnRouteToHospital,
	StatusAtHospital,
	StatusTreatmentComplete,
	StatusRescued,
	StatusCancelled,
}

// transitions is the full edge list. Cancelled is added for every non-terminal state below.
var transitions = map[IncidentStatus][]IncidentStatus{
	StatusPendingAssignment: {StatusDriverAssigned},
	StatusDriverAssigned:    {StatusDriverEnRoute, StatusPendingAssignment},
	StatusDriverEnRoute:     {StatusDogPickedUp},
	StatusDogPickedUp:       {StatusEnRouteToHospital},
	StatusEnRouteToHospital: {StatusAtHospital},
	StatusAtHospital:        {StatusTreatmentComplete, StatusRescued},
}

func ParseStatus(s string) (IncidentStatus, error) {
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s IncidentStatus) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func (s IncidentStatus) Terminal() bool {
	return s == StatusRescued || s == StatusTreatmentComplete || s == StatusCancelled
}

// Assigned reports the statuses in which an incident must carry a driver assignment.
func (s IncidentStatus) Assigned() bool {
	switch s {
	case StatusDriverAssigned, StatusDriverEnRoute, StatusDogPickedUp, StatusEnRouteToHospital, StatusAtHospital:
		return true
	}
	return false
}

// Outcome is the completion outcome recorded when the status is terminal.
func (s IncidentStatus) Outcome() string {
	switch s {
	case StatusRescued:
		return "Successfully Rescued"
	case StatusTreatmentComplete:
		return "Medical Treatment"
	case StatusCancelled:
		return "Cancelled"
	}
	return ""
}

func CanTransition(from, to IncidentStatus) bool {
	if from.Terminal() || !from.Valid() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow       Priority = "Low"
	PriorityNormal    Priority = "Normal"
	PriorityHigh      Priority = "High"
	PriorityEmergency Priority = "Emergency"
)

func ParsePriority(s string) (Priority, error) {
	for _, p := range []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityEmergency} {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityNormal:
		return 2
	case PriorityHigh:
		return 3
	case PriorityEmergency:
		return 4
	}
	return 0
}

// AllowsEmergency reports whether an emergency flag is consistent with the priority.
func (p Priority) AllowsEmergency() bool {
	return p == PriorityHigh || p == PriorityEmergency
}
