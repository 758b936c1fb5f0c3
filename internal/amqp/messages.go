package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action names the mutation that produced a change event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ChangeEvent is published after every successful mutation of a budget or
// an expense. Consumers fetch the current row themselves if they need it.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent creates an event stamped with the current UTC time.
func NewChangeEvent(entity string, action Action, id int64) ChangeEvent {
	return ChangeEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes an event and rejects bodies missing the
// entity, action or id.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, err
	}
	if ev.Entity == "" || ev.Action == "" || ev.ID <= 0 {
		return ChangeEvent{}, fmt.Errorf("incomplete change event: %s", string(data))
	}
	return ev, nil
}
