package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rescueDispatch/internal/domain"

	"github.com/slack-go/slack"
)

// Slack posts emergency events to an incoming webhook.
type Slack struct {
	url  string
	http *http.Client
}

func NewSlack(url string, timeout time.Duration) *Slack {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Slack{url: url, http: &http.Client{Timeout: timeout}}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Accepts(n domain.Notification) bool {
	return n.IsEmergency && (n.Type == domain.NotificationIncidentEmergency ||
		n.Type == domain.NotificationAssignmentDecline ||
		n.Type == domain.NotificationIncidentCompleted)
}

func (s *Slack) Send(ctx context.Context, n domain.Notification) error {
	return slack.PostWebhookCustomHTTPContext(ctx, s.url, s.http, slackMessage(n))
}

func slackMessage(n domain.Notification) *slack.WebhookMessage {
	fields := []slack.AttachmentField{
		{Title: "Request", Value: n.RequestID, Short: true},
		{Title: "Priority", Value: string(n.Priority), Short: true},
		{Title: "Status", Value: string(n.Status), Short: true},
	}
	if n.RelatedDriverID != "" {
		fields = append(fields, slack.AttachmentField{Title: "Driver", Value: n.RelatedDriverID, Short: true})
	}
	if reason := n.Metadata["reason"]; reason != "" {
		fields = append(fields, slack.AttachmentField{Title: "Reason", Value: reason})
	}

	color := "danger"
	if n.Type == domain.NotificationIncidentCompleted {
		color = "good"
	}

	return &slack.WebhookMessage{
		Text: fmt.Sprintf(":rotating_light: %s", n.Message),
		Attachments: []slack.Attachment{{
			Color:  color,
			Fields: fields,
			Footer: n.CreatedAt.UTC().Format(time.RFC3339),
		}},
	}
}
