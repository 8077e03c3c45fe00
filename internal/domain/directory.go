package domain

import "rescueDispatch/internal/geo"

// Driver is owned by the driver management side; dispatch only reads it.
type Driver struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Phone            string    `json:"phone,omitempty" yaml:"phone"`
	Coordinates      geo.Point `json:"coordinates" yaml:"coordinates"`
	Available        bool      `json:"available" yaml:"available"`
	ActiveIncidentID string    `json:"active_incident_id,omitempty" yaml:"active_incident_id"`
}

type Facility struct {
	ID                 string    `json:"id" yaml:"id"`
	Name               string    `json:"name" yaml:"name"`
	Address            string    `json:"address" yaml:"address"`
	Contact            string    `json:"contact" yaml:"contact"`
	Coordinates        geo.Point `json:"coordinates" yaml:"coordinates"`
	AcceptsEmergencies bool      `json:"accepts_emergencies" yaml:"accepts_emergencies"`
	Capacity           int       `json:"capacity" yaml:"capacity"`
}

type NearbyFacility struct {
	Facility       Facility `json:"facility"`
	DistanceMeters float64  `json:"distance_meters"`
}

type CandidateDriver struct {
	Driver         Driver  `json:"driver"`
	DistanceMeters float64 `json:"distance_meters"`
}
