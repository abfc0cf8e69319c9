package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType identifies the category of a notification and drives
// the icon/color mapping in the UI.
type NotificationType string

const (
	TypeSystem        NotificationType = "SYSTEM"
	TypeNewGrade      NotificationType = "NEW_GRADE"
	TypeNewAssignment NotificationType = "NEW_ASSIGNMENT"
	TypeNewTest       NotificationType = "NEW_TEST"
	TypeDeadline      NotificationType = "DEADLINE"
	TypeClassUpdate   NotificationType = "CLASS_UPDATE"
	TypeMessage       NotificationType = "MESSAGE"
)

// Known reports whether t is one of the defined notification types.
// Unknown values still render, with a default style.
func (t NotificationType) Known() bool {
	switch t {
	case TypeSystem, TypeNewGrade, TypeNewAssignment, TypeNewTest,
		TypeDeadline, TypeClassUpdate, TypeMessage:
		return true
	}
	return false
}

// RelatedModel names the kind of domain object a notification links to.
type RelatedModel string

const (
	RelatedAssignment RelatedModel = "Assignment"
	RelatedTest       RelatedModel = "Test"
	RelatedClass      RelatedModel = "Class"
	RelatedUser       RelatedModel = "User"
)

// Sender is the originator of a notification. The server sends it either
// as a bare identifier string or as an embedded {id, name} record; both
// shapes are resolved here, once, at the JSON boundary.
type Sender struct {
	// ID is the sender's user identifier.
	ID string

	// Name is the sender's display name. Empty when the server sent
	// only a bare identifier.
	Name string
}

// IsRef reports whether the sender carried an embedded display name.
func (s Sender) IsRef() bool {
	return s.Name != ""
}

// Display returns the best human-readable label for the sender.
func (s Sender) Display() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// UnmarshalJSON accepts either a bare string id or an {id, name} object.
func (s *Sender) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*s = Sender{ID: id}
		return nil
	}

	var ref struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return fmt.Errorf("decoding sender: %w", err)
	}
	*s = Sender{ID: ref.ID, Name: ref.Name}
	return nil
}

// MarshalJSON emits the shape the sender originally arrived in: a bare
// string when only the id is known, otherwise the {id, name} record.
func (s Sender) MarshalJSON() ([]byte, error) {
	if !s.IsRef() {
		return json.Marshal(s.ID)
	}
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{ID: s.ID, Name: s.Name})
}

// Notification is a domain event pushed to one or more recipients and
// rendered across the bell, toast, and desktop surfaces. The same shape
// arrives over the socket push and the REST poll; ID is stable across both.
type Notification struct {
	// ID is the opaque unique identifier for this notification.
	ID string `json:"id"`

	// Title is the short display heading.
	Title string `json:"title"`

	// Message is the full notification body text.
	Message string `json:"message"`

	// Type categorizes the notification (use the Type* constants).
	Type NotificationType `json:"type"`

	// Recipients lists the user ids the server addressed this to.
	Recipients []string `json:"recipients,omitempty"`

	// Sender identifies the originator; may be absent.
	Sender Sender `json:"sender,omitempty"`

	// IsReadBy lists the user ids that have acknowledged this
	// notification. Mutated only through the mark-as-read call.
	IsReadBy []string `json:"isReadBy"`

	// RelatedID references a domain object for deep-linking; empty
	// means the notification is not actionable.
	RelatedID string `json:"relatedId,omitempty"`

	// RelatedModel names the kind of object RelatedID points at.
	RelatedModel RelatedModel `json:"relatedModel,omitempty"`

	// Important drives visual emphasis and the filtered important view.
	Important bool `json:"important"`

	// CreatedAt orders notifications and feeds relative-time display.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the server last touched this record.
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReadBy reports whether userID has acknowledged this notification.
func (n Notification) ReadBy(userID string) bool {
	for _, id := range n.IsReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
