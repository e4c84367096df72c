package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on transaction messages.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// TransactionEventMessage is a lightweight notification that a
// transaction changed. It carries only the ID and version; the worker
// fetches the current row from the database before exporting.
type TransactionEventMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(kind string, id, version int64) *TransactionEventMessage {
	return &TransactionEventMessage{
		Kind:      kind,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GoalEventMessage announces a goal funding movement. AllocationID is
// zero for events that are not tied to a single allocation.
type GoalEventMessage struct {
	Kind         string    `json:"kind"`
	GoalID       int64     `json:"goal_id"`
	AllocationID int64     `json:"allocation_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewGoalEventMessage(kind string, goalID, allocationID int64) *GoalEventMessage {
	return &GoalEventMessage{
		Kind:         kind,
		GoalID:       goalID,
		AllocationID: allocationID,
		Timestamp:    time.Now(),
	}
}

func (m *GoalEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func GoalEventMessageFromJSON(data []byte) (*GoalEventMessage, error) {
	var msg GoalEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
