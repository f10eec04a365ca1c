package sse

import (
	"testing"

	"github.com/schoolwrapped/recap-backend/internal/logger"
)

func testHub(t *testing.T) *SSEHub {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewSSEHub(log)
}

func TestHub_BroadcastReachesOnlySubscribedChannel(t *testing.T) {
	hub := testHub(t)

	subscribed := hub.NewSSEClient()
	other := hub.NewSSEClient()
	hub.AddChannel(subscribed, "job-1")
	hub.AddChannel(other, "job-2")

	hub.Broadcast(SSEMessage{Channel: "job-1", Event: SSEEventJobProgress, Data: 42})

	select {
	case msg := <-subscribed.Outbound:
		if msg.Event != SSEEventJobProgress || msg.Channel != "job-1" {
			t.Fatalf("unexpected message %+v", msg)
		}
	default:
		t.Fatalf("subscriber received nothing")
	}

	select {
	case msg := <-other.Outbound:
		t.Fatalf("other channel received %+v", msg)
	default:
	}
}

func TestHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub := testHub(t)
	client := hub.NewSSEClient()
	hub.AddChannel(client, "job-1")

	// One more than the outbound buffer; the surplus must drop, not block.
	for i := 0; i < cap(client.Outbound)+1; i++ {
		hub.Broadcast(SSEMessage{Channel: "job-1", Event: SSEEventJobProgress, Data: i})
	}

	if got := len(client.Outbound); got != cap(client.Outbound) {
		t.Fatalf("buffered = %d, want full buffer %d", got, cap(client.Outbound))
	}
}

func TestHub_RemoveClientStopsDelivery(t *testing.T) {
	hub := testHub(t)
	client := hub.NewSSEClient()
	hub.AddChannel(client, "job-1")
	hub.RemoveClient(client)

	hub.Broadcast(SSEMessage{Channel: "job-1", Event: SSEEventJobDone})

	select {
	case msg := <-client.Outbound:
		t.Fatalf("removed client received %+v", msg)
	default:
	}
}

func TestHub_BroadcastWithoutChannelIsNoop(t *testing.T) {
	hub := testHub(t)
	client := hub.NewSSEClient()
	hub.AddChannel(client, "job-1")

	hub.Broadcast(SSEMessage{Event: SSEEventJobProgress})

	select {
	case msg := <-client.Outbound:
		t.Fatalf("channel-less broadcast delivered %+v", msg)
	default:
	}
}
