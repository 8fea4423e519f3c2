package querysync

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHistory_Navigation(t *testing.T) {
	h, err := NewMemoryHistory("")
	require.NoError(t, err)
	assert.Equal(t, "/", h.Current().String())

	var seen []string
	cancel := h.Listen(func(u url.URL) { seen = append(seen, u.String()) })

	_, err = h.Navigate("/?from=now-2h")
	require.NoError(t, err)
	_, err = h.Navigate("?from=now-3h")
	require.NoError(t, err)
	assert.Equal(t, "/?from=now-3h", h.Current().String())

	assert.True(t, h.Back())
	assert.Equal(t, "/?from=now-2h", h.Current().String())
	assert.True(t, h.Back())
	assert.False(t, h.Back())
	assert.True(t, h.Forward())

	// Pushing from the middle drops the forward entries.
	h.Push(url.URL{Path: "/other"})
	assert.False(t, h.Forward())
	entries, index := h.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, 2, index)

	h.Replace(url.URL{Path: "/replaced"})
	entries, _ = h.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, "/replaced", h.Current().String())

	cancel()
	h.Push(url.URL{Path: "/unseen"})

	assert.Equal(t, []string{
		"/?from=now-2h",
		"/?from=now-3h",
		"/?from=now-2h",
		"/",
		"/?from=now-2h",
		"/other",
		"/replaced",
	}, seen)
}

func TestMemoryHistory_InvalidURL(t *testing.T) {
	_, err := NewMemoryHistory("http://[::1")
	assert.Error(t, err)

	h, err := NewMemoryHistory("/")
	require.NoError(t, err)
	_, err = h.Navigate("http://[::1")
	assert.Error(t, err)
	assert.Equal(t, "/", h.Current().String())
}
