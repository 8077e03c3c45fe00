package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationIncidentCreated   NotificationType = "incident.created"
	NotificationIncidentEmergency NotificationType = "incident.emergency"
	NotificationStatusChanged     NotificationType = "incident.status_changed"
	NotificationDriverAssigned    NotificationType = "incident.driver_assigned"
	NotificationAssignmentAccept  NotificationType = "incident.assignment_accepted"
	NotificationAssignmentDecline NotificationType = "incident.assignment_declined"
	NotificationIncidentCompleted NotificationType = "incident.completed"
	NotificationIncidentUpdated   NotificationType = "incident.updated"
)

// Notification carries enough denormalized context that the consumer needs no lookups.
type Notification struct {
	ID                uuid.UUID         `json:"id"`
	Type              NotificationType  `json:"type"`
	Message           string            `json:"message"`
	RelatedIncidentID uuid.UUID         `json:"related_incident_id"`
	RequestID         string            `json:"request_id"`
	RelatedDriverID   string            `json:"related_driver_id,omitempty"`
	Priority          Priority          `json:"priority"`
	IsEmergency       bool              `json:"is_emergency"`
	Status            IncidentStatus    `json:"status"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
