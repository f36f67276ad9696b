package session

import (
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(kind domain.SessionEventKind, userID string) domain.SessionEvent {
	return domain.NewSessionEvent(kind, domain.Identity{UserID: userID})
}

func receive(t *testing.T, ch <-chan domain.SessionEvent) domain.SessionEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event")
		return domain.SessionEvent{}
	}
}

func TestHub_DeliversToOwnSubscribersOnly(t *testing.T) {
	h := NewHub(4, logger.NewNopLogger())
	defer h.Close()

	alice, unsubA := h.Subscribe("alice")
	defer unsubA()
	bob, unsubB := h.Subscribe("bob")
	defer unsubB()

	h.Publish(event(domain.SessionSignedIn, "alice"))
	h.Publish(event(domain.SessionSignedOut, "alice"))

	assert.Equal(t, domain.SessionSignedIn, receive(t, alice).Kind)
	assert.Equal(t, domain.SessionSignedOut, receive(t, alice).Kind)
	assert.Empty(t, bob)
}

func TestHub_Unsubscribe(t *testing.T) {
	h := NewHub(4, logger.NewNopLogger())
	defer h.Close()

	ch, unsubscribe := h.Subscribe("alice")
	unsubscribe()
	unsubscribe()

	h.Publish(event(domain.SessionSignedIn, "alice"))

	_, ok := <-ch
	assert.False(t, ok)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(1, logger.NewNopLogger())
	defer h.Close()

	ch, unsubscribe := h.Subscribe("alice")
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			h.Publish(event(domain.SessionSignedIn, "alice"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
	assert.Len(t, ch, 1)
}

func TestHub_Close(t *testing.T) {
	h := NewHub(4, logger.NewNopLogger())
	ch, unsubscribe := h.Subscribe("alice")

	h.Close()
	h.Close()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := h.Subscribe("alice")
	_, ok = <-late
	assert.False(t, ok)

	h.Publish(event(domain.SessionSignedIn, "alice"))
}
