// Package sse implements Server-Sent Events for live collection updates and
// doubles as the in-process change feed behind the store's watch queries.
package sse

import (
	"time"

	"github.com/monomori/monomori-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventItemCreated is emitted after an item is inserted.
	EventItemCreated EventType = "item.created"
	// EventItemUpdated is emitted after an item is rewritten.
	EventItemUpdated EventType = "item.updated"
	// EventItemDeleted is emitted after an item is removed.
	EventItemDeleted EventType = "item.deleted"
	// EventCollectionCleared is emitted after every item of a category is removed.
	EventCollectionCleared EventType = "collection.cleared"

	// EventViewModeChanged is emitted when a category's view mode is saved.
	EventViewModeChanged EventType = "preference.view_mode"

	// EventCoverUpdated is emitted when an item's cover is cached locally.
	EventCoverUpdated EventType = "cover.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// ItemEventTypes are the events that change the result of a collection query.
//
//nolint:gochecknoglobals // Static event group
var ItemEventTypes = []EventType{
	EventItemCreated,
	EventItemUpdated,
	EventItemDeleted,
	EventCollectionCleared,
}

// Known reports whether t is an event type the server emits.
func (t EventType) Known() bool {
	switch t {
	case EventItemCreated, EventItemUpdated, EventItemDeleted, EventCollectionCleared,
		EventViewModeChanged, EventCoverUpdated, EventHeartbeat:
		return true
	}
	return false
}

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Category restricts delivery to clients following that category.
	// Empty means broadcast to all.
	Category domain.Category `json:"-"`
}

// ItemEventData is the data payload for item create and update events.
type ItemEventData struct {
	Item *domain.Item `json:"item"`
}

// ItemDeletedEventData is the data payload for item delete events.
type ItemDeletedEventData struct {
	DeletedAt time.Time       `json:"deletedAt"`
	Category  domain.Category `json:"category"`
	ItemID    string          `json:"itemId"`
}

// CollectionClearedEventData is the data payload for bulk delete events.
type CollectionClearedEventData struct {
	ClearedAt time.Time       `json:"clearedAt"`
	Category  domain.Category `json:"category"`
	Removed   int64           `json:"removed"`
}

// ViewModeEventData is the data payload for view mode changes.
type ViewModeEventData struct {
	Category domain.Category `json:"category"`
	ViewMode domain.ViewMode `json:"viewMode"`
}

// CoverEventData is the data payload for cover updates.
type CoverEventData struct {
	Category domain.Category `json:"category"`
	ItemID   string          `json:"itemId"`
	BlurHash string          `json:"blurHash,omitempty"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

// NewItemCreatedEvent creates an item.created event.
func NewItemCreatedEvent(item *domain.Item) Event {
	return Event{
		Type:      EventItemCreated,
		Data:      ItemEventData{Item: item},
		Category:  item.Category,
		Timestamp: time.Now(),
	}
}

// NewItemUpdatedEvent creates an item.updated event.
func NewItemUpdatedEvent(item *domain.Item) Event {
	return Event{
		Type:      EventItemUpdated,
		Data:      ItemEventData{Item: item},
		Category:  item.Category,
		Timestamp: time.Now(),
	}
}

// NewItemDeletedEvent creates an item.deleted event.
func NewItemDeletedEvent(category domain.Category, itemID string) Event {
	now := time.Now()
	return Event{
		Type: EventItemDeleted,
		Data: ItemDeletedEventData{
			Category:  category,
			ItemID:    itemID,
			DeletedAt: now,
		},
		Category:  category,
		Timestamp: now,
	}
}

// NewCollectionClearedEvent creates a collection.cleared event.
func NewCollectionClearedEvent(category domain.Category, removed int64) Event {
	now := time.Now()
	return Event{
		Type: EventCollectionCleared,
		Data: CollectionClearedEventData{
			Category:  category,
			Removed:   removed,
			ClearedAt: now,
		},
		Category:  category,
		Timestamp: now,
	}
}

// NewViewModeEvent creates a preference.view_mode event.
func NewViewModeEvent(category domain.Category, mode domain.ViewMode) Event {
	return Event{
		Type:      EventViewModeChanged,
		Data:      ViewModeEventData{Category: category, ViewMode: mode},
		Category:  category,
		Timestamp: time.Now(),
	}
}

// NewCoverUpdatedEvent creates a cover.updated event.
func NewCoverUpdatedEvent(category domain.Category, itemID, blurHash string) Event {
	return Event{
		Type:      EventCoverUpdated,
		Data:      CoverEventData{Category: category, ItemID: itemID, BlurHash: blurHash},
		Category:  category,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
