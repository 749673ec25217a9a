package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types published after state changes.
const (
	EventSubmissionMarked   = "submission.marked"
	EventSubmissionUnmarked = "submission.unmarked"
	EventAssignmentCreated  = "assignment.created"
	EventAssignmentUpdated  = "assignment.updated"
	EventAssignmentDeleted  = "assignment.deleted"
	EventAssignmentRestored = "assignment.restored"
	EventUserDeleted        = "user.deleted"
	EventPersistenceFailed  = "persistence.failed"
)

// Event captures one change (or failure) worth telling the outside world about.
type Event struct {
	Type         string    `json:"type"`
	ActorID      string    `json:"actor_id,omitempty"`
	AssignmentID string    `json:"assignment_id,omitempty"`
	Key          string    `json:"key,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	At           time.Time `json:"at"`
}

// EventPublisher delivers events to an external channel.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSEventPublisher publishes each event on "<subject>.<event type>".
func NewNATSEventPublisher(conn *nats.Conn, subject string) EventPublisher {
	return &natsEventPublisher{conn: conn, subject: strings.TrimSuffix(subject, ".")}
}

func (p *natsEventPublisher) Publish(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.conn.Publish(p.subject+"."+event.Type, payload)
}

type nopEventPublisher struct{}

// NewNopEventPublisher discards every event.
func NewNopEventPublisher() EventPublisher {
	return nopEventPublisher{}
}

func (nopEventPublisher) Publish(context.Context, Event) error {
	return nil
}
