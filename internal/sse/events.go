// Package sse implements Server-Sent Events for real-time recipe, tag and
// ingredient updates. Every event is addressed to the user who owns the
// changed entity.
package sse

import (
	"time"

	"github.com/recipebox/recipebox-server/internal/dto"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventRecipeCreated represents a recipe creation event.
	EventRecipeCreated EventType = "recipe.created"
	// EventRecipeUpdated represents a recipe update, image changes included.
	EventRecipeUpdated EventType = "recipe.updated"
	// EventRecipeDeleted represents a recipe deletion event.
	EventRecipeDeleted EventType = "recipe.deleted"

	EventTagCreated EventType = "tag.created"
	EventTagUpdated EventType = "tag.updated"
	EventTagDeleted EventType = "tag.deleted"

	EventIngredientCreated EventType = "ingredient.created"
	EventIngredientUpdated EventType = "ingredient.updated"
	EventIngredientDeleted EventType = "ingredient.deleted"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID restricts delivery to one user's clients (not sent to client).
	// Zero means broadcast.
	UserID int64 `json:"-"`
}

// RecipeEventData is the payload for recipe.created and recipe.updated.
type RecipeEventData struct {
	Recipe dto.RecipeSummary `json:"recipe"`
}

// AttributeEventData is the payload for tag and ingredient create/update events.
type AttributeEventData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DeletedEventData is the payload for every *.deleted event.
type DeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	ID        int64     `json:"id"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewRecipeEvent creates a recipe.created or recipe.updated event for the owner.
func NewRecipeEvent(typ EventType, userID int64, recipe dto.RecipeSummary) Event {
	return Event{
		Type:      typ,
		Data:      RecipeEventData{Recipe: recipe},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewAttributeEvent creates a tag.* or ingredient.* create/update event.
func NewAttributeEvent(typ EventType, userID int64, attr dto.Attribute) Event {
	return Event{
		Type:      typ,
		Data:      AttributeEventData{ID: attr.ID, Name: attr.Name},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewDeletedEvent creates a *.deleted event.
func NewDeletedEvent(typ EventType, userID, id int64) Event {
	now := time.Now()
	return Event{
		Type:      typ,
		Data:      DeletedEventData{ID: id, DeletedAt: now},
		Timestamp: now,
		UserID:    userID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
