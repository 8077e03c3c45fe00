package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rescueDispatch/internal/domain"

	"github.com/nats-io/nats.go"
)

// Publisher is the part of *nats.Conn the sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes notifications on <subject>.<type>, e.g. dispatch.notifications.incident.created.
type NATS struct {
	pub     Publisher
	subject string
}

func NewNATS(pub Publisher, subject string) *NATS {
	return &NATS{pub: pub, subject: subject}
}

func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("rescue-dispatch"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

func (s *NATS) Name() string { return "nats" }

func (s *NATS) Accepts(domain.Notification) bool { return true }

func (s *NATS) Send(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return s.pub.Publish(s.subject+"."+string(n.Type), payload)
}
