package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failed(msg string) Notification {
	return Notification{Type: TypeDanger, Title: "Failed", Message: msg}
}

func TestCenter_NotifyAssignsIDs(t *testing.T) {
	c := NewCenter(10)

	a := c.Notify(failed("Failed to load tags"))
	b := c.Notify(failed("Failed to load singleView"))

	assert.Equal(t, uint32(1), a.ID)
	assert.Equal(t, uint32(2), b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "Failed to load tags", active[0].Message)
	assert.Equal(t, "Failed to load singleView", active[1].Message)
}

func TestCenter_Dismiss(t *testing.T) {
	c := NewCenter(10)
	a := c.Notify(failed("one"))
	b := c.Notify(failed("two"))

	assert.Equal(t, 1, c.Dismiss(a.ID))
	assert.Equal(t, 0, c.Dismiss(a.ID), "second dismiss is a no-op")
	assert.Equal(t, 0, c.Dismiss(999))

	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)
	assert.Len(t, c.All(), 2, "dismissed notifications stay in history")

	assert.Equal(t, 1, c.DismissAll())
	assert.Empty(t, c.Active())
}

func TestCenter_Retention(t *testing.T) {
	c := NewCenter(3)
	for i := 0; i < 5; i++ {
		c.Notify(failed("x"))
	}

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, uint32(3), all[0].ID)
	assert.Equal(t, uint32(5), all[2].ID)
	assert.Len(t, c.Active(), 3)
}

func TestCenter_Subscribe(t *testing.T) {
	c := NewCenter(10)
	ch, cancel := c.Subscribe(4)

	c.Notify(failed("Failed to load tag values"))

	select {
	case n := <-ch:
		assert.Equal(t, "Failed to load tag values", n.Message)
		assert.Equal(t, TypeDanger, n.Type)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	assert.NotPanics(t, func() { c.Notify(failed("after cancel")) })
}

func TestCenter_SlowSubscriberDoesNotBlock(t *testing.T) {
	c := NewCenter(10)
	_, cancel := c.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			c.Notify(failed("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full subscriber")
	}
}

func TestCenter_IsActive(t *testing.T) {
	c := NewCenter(10)
	n := c.Notify(Notification{Type: TypeInfo, Message: "hello"})

	assert.True(t, c.IsActive(n.ID))
	c.Dismiss(n.ID)
	assert.False(t, c.IsActive(n.ID))
	assert.False(t, c.IsActive(n.ID+1))
}
