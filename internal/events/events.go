package events

import (
	"context"
	"time"

	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
	"github.com/google/uuid"
)

// EventType names a user lifecycle change applied locally.
type EventType string

const (
	UserCreated EventType = "user.created"
	UserUpdated EventType = "user.updated"
	UserDeleted EventType = "user.deleted"
)

// UserEvent is emitted after a provider event has been applied to the store.
type UserEvent struct {
	EventID    string       `json:"event_id"`
	DeliveryID string       `json:"delivery_id,omitempty"`
	EventType  EventType    `json:"event_type"`
	ExternalID string       `json:"external_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	User       *models.User `json:"user,omitempty"`
}

// NewUserEvent stamps a fresh event id and time.
func NewUserEvent(t EventType, externalID string, u *models.User) UserEvent {
	return UserEvent{
		EventID:    uuid.NewString(),
		EventType:  t,
		ExternalID: externalID,
		OccurredAt: time.Now().UTC(),
		User:       u,
	}
}

// Publisher fans user events out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt UserEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, UserEvent) error { return nil }
func (NopPublisher) Close() error                            { return nil }
