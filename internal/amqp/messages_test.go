package amqp

import "testing"

func TestTransactionEventMessageCodec(t *testing.T) {
	msg := NewTransactionEventMessage(KindUpdated, 42, 3)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := TransactionEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Kind != KindUpdated || decoded.ID != 42 || decoded.Version != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("timestamp lost in transit")
	}
}

func TestTransactionEventMessageRejectsGarbage(t *testing.T) {
	if _, err := TransactionEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("garbage payload decoded without error")
	}
}

func TestGoalEventMessageCodec(t *testing.T) {
	msg := NewGoalEventMessage("funded", 7, 99)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := GoalEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Kind != "funded" || decoded.GoalID != 7 || decoded.AllocationID != 99 {
		t.Errorf("decoded = %+v", decoded)
	}
}
