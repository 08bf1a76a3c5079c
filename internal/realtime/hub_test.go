package realtime

import (
	"testing"

	"github.com/mehfilhq/mehfil/internal/domain"
)

func TestHubRegisterCountsConnections(t *testing.T) {
	hub := NewHub(NewRegistry())

	a := NewClient(nil, hub, nil, nil)
	b := NewClient(nil, hub, nil, nil)

	hub.Register(a)
	hub.Register(b)

	if hub.Len() != 2 {
		t.Fatalf("expected 2 live connections, got %d", hub.Len())
	}
	if hub.RoomSize(RoomGlobalFeed) != 2 {
		t.Fatalf("expected 2 room members, got %d", hub.RoomSize(RoomGlobalFeed))
	}
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry)

	a := NewClient(nil, hub, nil, nil)
	hub.Register(a)
	registry.Register("user1", a)

	hub.Unregister(a)
	hub.Unregister(a)

	if hub.Len() != 0 {
		t.Fatalf("expected 0 live connections, got %d", hub.Len())
	}
	if _, ok := registry.Bound("user1"); ok {
		t.Fatalf("expected identity binding removed on unregister")
	}
}

func TestHubPublishReachesRoomMembersOnly(t *testing.T) {
	hub := NewHub(NewRegistry())

	member := NewClient(nil, hub, nil, nil)
	outsider := NewClient(nil, hub, nil, nil)
	hub.Register(member)
	// outsider never registered, so it is in no room

	hub.Publish(RoomGlobalFeed, domain.Event{Type: domain.EventThoughtNew})

	select {
	case event := <-member.send:
		if event.Type != domain.EventThoughtNew {
			t.Fatalf("unexpected event %s", event.Type)
		}
	default:
		t.Fatalf("expected member to receive broadcast")
	}

	select {
	case event := <-outsider.send:
		t.Fatalf("outsider received unexpected event %s", event.Type)
	default:
	}
}

func TestHubPublishIncludesOriginator(t *testing.T) {
	hub := NewHub(NewRegistry())

	origin := NewClient(nil, hub, nil, nil)
	other := NewClient(nil, hub, nil, nil)
	hub.Register(origin)
	hub.Register(other)

	hub.Publish(RoomGlobalFeed, domain.Event{Type: domain.EventReactionUpdated})

	for _, c := range []*Client{origin, other} {
		select {
		case <-c.send:
		default:
			t.Fatalf("expected %s to receive broadcast", c.ID())
		}
	}
}

func TestHubPublishSkipsClosedClients(t *testing.T) {
	hub := NewHub(NewRegistry())

	a := NewClient(nil, hub, nil, nil)
	hub.Register(a)
	a.Close()

	hub.Publish(RoomGlobalFeed, domain.Event{Type: domain.EventThoughtNew})

	select {
	case event := <-a.send:
		t.Fatalf("closed client received event %s", event.Type)
	default:
	}
}
