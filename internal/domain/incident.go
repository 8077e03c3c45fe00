package domain

import (
	"errors"
	"fmt"
	"time"

	"rescueDispatch/internal/geo"

	"github.com/google/uuid"
)

type TimelineAction string

const (
	ActionCreated    TimelineAction = "created"
	ActionAssigned   TimelineAction = "assigned"
	ActionAccepted   TimelineAction = "accepted"
	ActionDeclined   TimelineAction = "declined"
	ActionProgress   TimelineAction = "progress"
	ActionTransition TimelineAction = "transition"
	ActionNote       TimelineAction = "note"
	ActionRetriage   TimelineAction = "retriage"
)

type Location struct {
	Address     string    `json:"address"`
	Coordinates geo.Point `json:"coordinates"`
	City        string    `json:"city,omitempty"`
	District    string    `json:"district,omitempty"`
	Province    string    `json:"province,omitempty"`
	// Approximate is set when the reported coordinates were replaced by the fallback center.
	Approximate bool `json:"approximate,omitempty"`
}

type Animal struct {
	Name      string   `json:"name,omitempty"`
	Breed     string   `json:"breed,omitempty"`
	Size      string   `json:"size,omitempty"`
	AgeBand   string   `json:"age_band,omitempty"`
	Color     string   `json:"color,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Injuries  []string `json:"injuries,omitempty"`
	PhotoRef  string   `json:"photo_ref,omitempty"`
}

type Reporter struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

type Assignment struct {
	DriverID         string     `json:"driver_id"`
	DriverName       string     `json:"driver_name"`
	AssignedAt       time.Time  `json:"assigned_at"`
	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
}

// FacilitySnapshot is copied onto the incident; later facility edits do not touch it.
type FacilitySnapshot struct {
	FacilityID  string    `json:"facility_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Contact     string    `json:"contact"`
	Coordinates geo.Point `json:"coordinates"`
	SnapshotAt  time.Time `json:"snapshot_at"`
}

type TimelineEntry struct {
	Timestamp   time.Time      `json:"timestamp"`
	Status      IncidentStatus `json:"status"`
	Action      TimelineAction `json:"action"`
	Notes       string         `json:"notes,omitempty"`
	ActorID     string         `json:"actor_id,omitempty"`
	DriverID    string         `json:"driver_id,omitempty"`
	Coordinates *geo.Point     `json:"coordinates,omitempty"`
}

type Completion struct {
	CompletedAt time.Time `json:"completed_at"`
	Outcome     string    `json:"outcome"`
	DriverID    string    `json:"driver_id,omitempty"`
	DriverName  string    `json:"driver_name,omitempty"`
}

type Incident struct {
	ID                  uuid.UUID         `json:"id"`
	RequestID           string            `json:"request_id"`
	Location            Location          `json:"location"`
	Animal              Animal            `json:"animal"`
	Reporter            Reporter          `json:"reporter"`
	ConditionDescriptor string            `json:"condition_descriptor"`
	Notes               string            `json:"notes,omitempty"`
	Assignment          *Assignment       `json:"assignment"`
	Facility            *FacilitySnapshot `json:"facility"`
	Status              IncidentStatus    `json:"status"`
	Priority            Priority          `json:"priority"`
	IsEmergency         bool              `json:"is_emergency"`
	Timeline            []TimelineEntry   `json:"timeline"`
	Photos              []string          `json:"photos"`
	Completion          *Completion       `json:"completion"`
	Version             int64             `json:"version"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

var ErrInvariant = errors.New("incident invariant violated")

// CheckInvariants validates the record-level rules every persisted incident obeys.
func (i *Incident) CheckInvariants() error {
	if !i.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvariant, i.Status)
	}
	if (i.Assignment != nil) != i.Status.Assigned() {
		return fmt.Errorf("%w: assignment present=%t with status %s", ErrInvariant, i.Assignment != nil, i.Status)
	}
	if (i.Completion != nil) != i.Status.Terminal() {
		return fmt.Errorf("%w: completion present=%t with status %s", ErrInvariant, i.Completion != nil, i.Status)
	}
	if i.IsEmergency && !i.Priority.AllowsEmergency() {
		return fmt.Errorf("%w: emergency with priority %s", ErrInvariant, i.Priority)
	}
	if len(i.Timeline) == 0 {
		return fmt.Errorf("%w: empty timeline", ErrInvariant)
	}
	for k := 1; k < len(i.Timeline); k++ {
		if i.Timeline[k].Timestamp.Before(i.Timeline[k-1].Timestamp) {
			return fmt.Errorf("%w: timeline out of order at %d", ErrInvariant, k)
		}
	}
	return nil
}

// Append adds one timeline entry, never earlier than the previous one.
func (i *Incident) Append(entry TimelineEntry) {
	if n := len(i.Timeline); n > 0 && entry.Timestamp.Before(i.Timeline[n-1].Timestamp) {
		entry.Timestamp = i.Timeline[n-1].Timestamp
	}
	i.Timeline = append(i.Timeline, entry)
	i.UpdatedAt = entry.Timestamp
}

func (i *Incident) LastEntry() TimelineEntry {
	if len(i.Timeline) == 0 {
		return TimelineEntry{}
	}
	return i.Timeline[len(i.Timeline)-1]
}

// DeclinedBy returns the drivers who declined this incident since staff last
// moved it back to PendingAssignment.
func (i *Incident) DeclinedBy() map[string]bool {
	out := make(map[string]bool)
	for _, entry := range i.Timeline {
		switch {
		case entry.Action == ActionTransition && entry.Status == StatusPendingAssignment:
			clear(out)
		case entry.Action == ActionDeclined && entry.DriverID != "":
			out[entry.DriverID] = true
		}
	}
	return out
}

func (i *Incident) AssignedTo(driverID string) bool {
	return i.Assignment != nil && driverID != "" && i.Assignment.DriverID == driverID
}

// Clone returns a deep copy so store callers never share slices or pointers.
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	c.Animal.Injuries = append([]string(nil), i.Animal.Injuries...)
	c.Photos = append([]string(nil), i.Photos...)
	c.Timeline = make([]TimelineEntry, len(i.Timeline))
	for k, en := range i.Timeline {
		if en.Coordinates != nil {
			p := *en.Coordinates
			en.Coordinates = &p
		}
		c.Timeline[k] = en
	}
	if i.Assignment != nil {
		a := *i.Assignment
		if a.AcceptedAt != nil {
			t := *a.AcceptedAt
			a.AcceptedAt = &t
		}
		if a.EstimatedArrival != nil {
			t := *a.EstimatedArrival
			a.EstimatedArrival = &t
		}
		c.Assignment = &a
	}
	if i.Facility != nil {
		f := *i.Facility
		c.Facility = &f
	}
	if i.Completion != nil {
		cm := *i.Completion
		c.Completion = &cm
	}
	return &c
}

type IncidentFilter struct {
	Status    *IncidentStatus
	Priority  *Priority
	Emergency *bool
	Page      int
	Limit     int
}

func (f IncidentFilter) Matches(inc *Incident) bool {
	if f.Status != nil && inc.Status != *f.Status {
		return false
	}
	if f.Priority != nil && inc.Priority != *f.Priority {
		return false
	}
	if f.Emergency != nil && inc.IsEmergency != *f.Emergency {
		return false
	}
	return true
}

// Normalize clamps pagination to page>=1 and 1<=limit<=100 (default 20).
func (f IncidentFilter) Normalize() IncidentFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

type NearbyIncident struct {
	Incident       *Incident `json:"incident"`
	DistanceMeters float64   `json:"distance_meters"`
}
