package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory(8)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	c.Set("k", []byte("v2"), time.Minute)
	got, _ = c.Get("k")
	assert.Equal(t, []byte("v2"), got, "set overwrites")
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory(8)

	c.Set("k", []byte("v"), 10*time.Millisecond)
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "expired entries read as absent")
}

func TestMemory_NonPositiveTTLStoresNothing(t *testing.T) {
	c := NewMemory(8)

	c.Set("zero", []byte("v"), 0)
	c.Set("negative", []byte("v"), -time.Second)

	assert.Equal(t, 0, c.Len())
}

func TestMemory_Purge(t *testing.T) {
	c := NewMemory(8)
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)
	require.Equal(t, 2, c.Len())

	c.Purge()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestMemory_SweepsExpiredWhenFull(t *testing.T) {
	c := NewMemory(2)

	c.Set("stale1", []byte("x"), 5*time.Millisecond)
	c.Set("stale2", []byte("x"), 5*time.Millisecond)
	time.Sleep(15 * time.Millisecond)

	c.Set("fresh", []byte("x"), time.Minute)

	assert.Equal(t, 1, c.Len(), "expired entries are swept before inserting")
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestMemory_EvictsWhenFullOfLiveEntries(t *testing.T) {
	c := NewMemory(3)

	c.Set("short", []byte("x"), time.Minute)
	c.Set("mid", []byte("x"), time.Hour)
	c.Set("long", []byte("x"), 24*time.Hour)

	c.Set("new", []byte("x"), time.Hour)

	assert.Equal(t, 3, c.Len(), "bound holds after eviction")
	_, ok := c.Get("short")
	assert.False(t, ok, "the soonest-expiring entry is evicted first")
	_, ok = c.Get("new")
	assert.True(t, ok)
}

func TestMemory_DefaultBound(t *testing.T) {
	c := NewMemory(0)

	for i := 0; i < 1024; i++ {
		c.Set(fmt.Sprintf("key-%d", i), []byte("x"), time.Minute)
	}
	c.Set("overflow", []byte("x"), time.Minute)

	assert.Equal(t, 1024, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "suggest:abc:20", Key("suggest", "abc", "20"))
	assert.Equal(t, "solo", Key("solo"))
	assert.Equal(t, "", Key())
}
