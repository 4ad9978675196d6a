package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	c := New()
	assert.NotNil(t, c)
	assert.Empty(t, c.items)
}

func TestCache_SetAndGet(t *testing.T) {
	c := New()

	c.Set("key1", "value1", 10*time.Second)
	val, exists := c.Get("key1")
	assert.True(t, exists)
	assert.Equal(t, "value1", val)

	val, exists = c.Get("nonexistent")
	assert.False(t, exists)
	assert.Nil(t, val)
}

func TestCache_Expiration(t *testing.T) {
	c := New()

	c.Set("short", "value", 10*time.Millisecond)
	val, exists := c.Get("short")
	assert.True(t, exists)
	assert.Equal(t, "value", val)

	time.Sleep(20 * time.Millisecond)

	val, exists = c.Get("short")
	assert.False(t, exists)
	assert.Nil(t, val)
}

func TestCache_Overwrite(t *testing.T) {
	c := New()

	c.Set("key", "first", 10*time.Second)
	c.Set("key", "second", 10*time.Second)

	val, exists := c.Get("key")
	assert.True(t, exists)
	assert.Equal(t, "second", val)
}

func TestCache_Delete(t *testing.T) {
	c := New()

	c.Set("key", "value", 10*time.Second)
	c.Delete("key")

	_, exists := c.Get("key")
	assert.False(t, exists)

	// Deleting a missing key is a no-op
	c.Delete("missing")
}

func TestCache_Clear(t *testing.T) {
	c := New()

	c.Set("a", 1, 10*time.Second)
	c.Set("b", 2, 10*time.Second)
	c.Clear()

	_, exists := c.Get("a")
	assert.False(t, exists)
	_, exists = c.Get("b")
	assert.False(t, exists)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set("key", n, 10*time.Second)
		}(i)
		go func() {
			defer wg.Done()
			c.Get("key")
		}()
	}
	wg.Wait()

	_, exists := c.Get("key")
	assert.True(t, exists)
}
