// Package events broadcasts ledger activity to interested consumers.
//
// Every mutation to a group's ledger (expenses, settlements, membership)
// produces an event so that downstream consumers can refresh their view of
// the group. Publishing is best effort: a failed publish is logged and never
// fails the request that triggered it.
package events

import (
	"context"
	"time"

	"github.com/evenlyhq/evenly/internal/models"
)

// Event types emitted by the API layer.
const (
	TypeExpenseAdded      = "expense-added"
	TypeExpenseUpdated    = "expense-updated"
	TypeExpenseDeleted    = "expense-deleted"
	TypeSettlementCreated = "settlement-created"
	TypeGroupCreated      = "group-created"
	TypeMemberAdded       = "member-added"
	TypeMemberRemoved     = "member-removed"
)

// Event is a single ledger change notification. EntityID names the expense,
// settlement, or user the event is about, depending on Type.
type Event struct {
	Type      string         `json:"type"`
	GroupID   models.GroupID `json:"groupId"`
	EntityID  string         `json:"entityId,omitempty"`
	ActorID   models.UserID  `json:"actorId"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType string, groupID models.GroupID, entityID string, actor models.UserID) Event {
	return Event{
		Type:      eventType,
		GroupID:   groupID,
		EntityID:  entityID,
		ActorID:   actor,
		Timestamp: time.Now(),
	}
}

// Publisher delivers events to consumers. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
