package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}

	want := Message{Type: TypeAttendanceMarked, Body: []byte("2026-03-02")}
	if err := q.Publish(ctx, want); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-messages:
		if got.Type != want.Type || string(got.Body) != string(want.Body) {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishHonorsContext(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	// Fill the buffer, then cancel; the next publish must not block forever.
	if err := q.Publish(ctx, Message{Type: "x"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	cancel()
	if err := q.Publish(ctx, Message{Type: "y"}); err == nil {
		t.Error("expected publish on a full queue with cancelled context to fail")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeAttendanceMarked, Body: []byte("2026-03-02")}
	got, err := deserialize(serialize(msg))
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if got.Type != msg.Type || string(got.Body) != string(msg.Body) {
		t.Errorf("expected %+v, got %+v", msg, got)
	}
}

func TestDeserializeBodyWithSeparator(t *testing.T) {
	// Only the first separator splits; bodies may contain '|'.
	got, err := deserialize("event|a|b")
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if got.Type != "event" || string(got.Body) != "a|b" {
		t.Errorf("unexpected result: %+v", got)
	}
}
