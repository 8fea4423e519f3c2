package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLabelValuesCache_GetPut(t *testing.T) {
	c := NewLabelValuesCache(8, 0)

	_, ok := c.Get("env", "app.cpu{}")
	assert.False(t, ok)

	c.Put("env", "app.cpu{}", []string{"prod", "staging"})

	got, ok := c.Get("env", "app.cpu{}")
	assert.True(t, ok)
	assert.Equal(t, []string{"prod", "staging"}, got)

	_, ok = c.Get("env", "app.alloc{}")
	assert.False(t, ok, "entries are keyed by query as well as label")
	assert.Equal(t, 1, c.Len())
}

func TestLabelValuesCache_Evicts(t *testing.T) {
	c := NewLabelValuesCache(2, 0)
	c.Put("a", "", []string{"1"})
	c.Put("b", "", []string{"2"})
	c.Put("c", "", []string{"3"})

	_, ok := c.Get("a", "")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLabelValuesCache_Expires(t *testing.T) {
	c := NewLabelValuesCache(8, 20*time.Millisecond)
	c.Put("env", "", []string{"prod"})

	assert.Eventually(t, func() bool {
		_, ok := c.Get("env", "")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestLabelValuesCache_NilIsEmpty(t *testing.T) {
	var c *LabelValuesCache
	c.Put("env", "", []string{"prod"})
	_, ok := c.Get("env", "")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
	assert.NotPanics(t, c.Purge)
}
