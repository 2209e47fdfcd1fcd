package clerk

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"

	sessionPrefix = "session."
)

// Event is a decoded webhook envelope. Payload holds one of UserCreated,
// UserUpdated, UserDeleted, SessionEvent or UnknownEvent.
type Event struct {
	Type    string
	Object  string
	Payload Payload
}

// Payload is implemented by every event variant.
type Payload interface {
	EventType() string
}

// EmailAddress is one entry of a user's address list.
type EmailAddress struct {
	ID           string `json:"id,omitempty"`
	EmailAddress string `json:"email_address"`
}

// UserData is the user object carried by user.created and user.updated.
// Optional fields are pointers so absence and null stay distinguishable.
type UserData struct {
	ID             string         `json:"id"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
	Username       *string        `json:"username"`
	ImageURL       *string        `json:"image_url"`
}

// PrimaryEmail returns the first address in the list, or "".
func (d UserData) PrimaryEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return d.EmailAddresses[0].EmailAddress
}

type UserCreated struct{ UserData }

func (UserCreated) EventType() string { return EventUserCreated }

type UserUpdated struct{ UserData }

func (UserUpdated) EventType() string { return EventUserUpdated }

// UserDeleted is the deleted-object stub sent on user.deleted.
type UserDeleted struct {
	ID      *string `json:"id"`
	Deleted bool    `json:"deleted"`
}

func (UserDeleted) EventType() string { return EventUserDeleted }

// SessionEvent covers every session.* type. Its data is never read.
type SessionEvent struct {
	Type string
	Raw  json.RawMessage
}

func (e SessionEvent) EventType() string { return e.Type }

// UnknownEvent carries any type this service does not handle.
type UnknownEvent struct {
	Type string
	Raw  json.RawMessage
}

func (e UnknownEvent) EventType() string { return e.Type }

// IsSessionEvent reports whether t names a session lifecycle event.
func IsSessionEvent(t string) bool { return strings.HasPrefix(t, sessionPrefix) }

type envelope struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

// ParseEvent decodes a verified webhook body into its typed variant.
func ParseEvent(body []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	evt := &Event{Type: env.Type, Object: env.Object}
	switch {
	case IsSessionEvent(env.Type):
		evt.Payload = SessionEvent{Type: env.Type, Raw: env.Data}
	case env.Type == EventUserCreated:
		var p UserCreated
		if err := decodeData(env.Data, &p); err != nil {
			return nil, err
		}
		evt.Payload = p
	case env.Type == EventUserUpdated:
		var p UserUpdated
		if err := decodeData(env.Data, &p); err != nil {
			return nil, err
		}
		evt.Payload = p
	case env.Type == EventUserDeleted:
		var p UserDeleted
		if err := decodeData(env.Data, &p); err != nil {
			return nil, err
		}
		evt.Payload = p
	default:
		evt.Payload = UnknownEvent{Type: env.Type, Raw: env.Data}
	}
	return evt, nil
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode event data: %w", err)
	}
	return nil
}
