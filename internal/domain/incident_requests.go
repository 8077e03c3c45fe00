package domain

import "time"

type CoordinatesInput struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type CreateIncidentRequest struct {
	Address     string            `json:"address" validate:"required_without=Coordinates,max=300"`
	Coordinates *CoordinatesInput `json:"coordinates"`
	City        string            `json:"city" validate:"max=100"`
	District    string            `json:"district" validate:"max=100"`
	Province    string            `json:"province" validate:"max=100"`

	Condition string `json:"condition" validate:"required,max=40"`

	AnimalName      string   `json:"animal_name" validate:"max=100"`
	Breed           string   `json:"breed" validate:"max=100"`
	Size            string   `json:"size" validate:"omitempty,oneof=small medium large"`
	AgeBand         string   `json:"age_band" validate:"omitempty,oneof=puppy young adult senior unknown"`
	Color           string   `json:"color" validate:"max=60"`
	ConditionText   string   `json:"condition_text" validate:"max=2000"`
	Injuries        []string `json:"injuries" validate:"max=20,dive,max=100"`
	PhotoRefs       []string `json:"photo_refs" validate:"max=10,dive,required,max=500"`
	ReporterName    string   `json:"reporter_name" validate:"required,max=120"`
	ReporterPhone   string   `json:"reporter_phone" validate:"required,min=5,max=30"`
	ReporterEmail   string   `json:"reporter_email" validate:"omitempty,email"`
	Notes           string   `json:"notes" validate:"max=2000"`
	LinkedAccountID string   `json:"-"`
}

type ListIncidentsRequest struct {
	Status    string `query:"status"`
	Priority  string `query:"priority"`
	Emergency string `query:"emergency"`
	Page      int    `query:"page" validate:"min=1"`
	Limit     int    `query:"limit" validate:"min=1,max=100"`
}

type ListIncidentsResponse struct {
	Incidents []*Incident `json:"incidents"`
	Page      int         `json:"page"`
	Limit     int         `json:"limit"`
	Total     int64       `json:"total"`
}

type NearbyRequest struct {
	Lat      float64 `json:"lat" validate:"lat"`
	Lng      float64 `json:"lng" validate:"lng"`
	RadiusKM float64 `json:"radius_km" validate:"omitempty,radius_km"`
	Limit    int     `json:"limit" validate:"min=0,max=100"`
	// EmergencyOnly restricts facility searches to facilities that accept emergencies.
	EmergencyOnly bool `json:"emergency_only"`
}

type AssignDriverRequest struct {
	DriverID   string `json:"driver_id" validate:"required,max=100"`
	DriverName string `json:"driver_name" validate:"max=120"`
}

type AssignmentResponse string

const (
	ResponseAccept  AssignmentResponse = "accept"
	ResponseDecline AssignmentResponse = "decline"
)

type RespondRequest struct {
	Response         AssignmentResponse `json:"response" validate:"required,oneof=accept decline"`
	Reason           string             `json:"reason" validate:"max=500"`
	EstimatedArrival *time.Time         `json:"estimated_arrival"`
}

type ProgressRequest struct {
	Status      IncidentStatus    `json:"status" validate:"required"`
	Notes       string            `json:"notes" validate:"max=2000"`
	Coordinates *CoordinatesInput `json:"coordinates"`
	FacilityID  string            `json:"facility_id" validate:"max=100"`
}

type TransitionRequest struct {
	Status      IncidentStatus    `json:"status" validate:"required"`
	Notes       string            `json:"notes" validate:"max=2000"`
	Coordinates *CoordinatesInput `json:"coordinates"`
}

type NoteRequest struct {
	Notes string `json:"notes" validate:"required,max=2000"`
}

type RetriageRequest struct {
	Condition string `json:"condition" validate:"required,max=40"`
	Reason    string `json:"reason" validate:"max=500"`
}

// AdminIncidentUpdate is the allow-list of fields an administrator may correct.
// Status, assignment, facility, completion and timeline are never editable here.
type AdminIncidentUpdate struct {
	Address       *string  `json:"address" validate:"omitempty,min=1,max=300"`
	City          *string  `json:"city" validate:"omitempty,max=100"`
	District      *string  `json:"district" validate:"omitempty,max=100"`
	Province      *string  `json:"province" validate:"omitempty,max=100"`
	Lat           *float64 `json:"lat" validate:"omitempty,lat"`
	Lng           *float64 `json:"lng" validate:"omitempty,lng"`
	AnimalName    *string  `json:"animal_name" validate:"omitempty,max=100"`
	Breed         *string  `json:"breed" validate:"omitempty,max=100"`
	Size          *string  `json:"size" validate:"omitempty,oneof=small medium large"`
	AgeBand       *string  `json:"age_band" validate:"omitempty,oneof=puppy young adult senior unknown"`
	Color         *string  `json:"color" validate:"omitempty,max=60"`
	ConditionText *string  `json:"condition_text" validate:"omitempty,max=2000"`
	ReporterPhone *string  `json:"reporter_phone" validate:"omitempty,min=5,max=30"`
	ReporterEmail *string  `json:"reporter_email" validate:"omitempty,email"`
	AddPhotoRefs  []string `json:"add_photo_refs" validate:"max=10,dive,required,max=500"`
	Notes         *string  `json:"notes" validate:"omitempty,max=2000"`
}

type DriverLocationRequest struct {
	Lat float64 `json:"lat" validate:"lat"`
	Lng float64 `json:"lng" validate:"lng"`
}
