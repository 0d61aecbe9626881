package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now atomic.Int64
}

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.now.Store(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time          { return time.Unix(0, c.now.Load()).UTC() }
func (c *fakeClock) Advance(d time.Duration) { c.now.Add(int64(d)) }

func TestGetMissingKey(t *testing.T) {
	c := New[string](Options{Name: "test"})
	defer c.Close()

	assert.True(t, c.Get("nope").IsAbsent())
}

func TestSetThenGet(t *testing.T) {
	c := New[string](Options{Name: "test"})
	defer c.Close()

	c.Set("top100:1:10", "page")

	v, ok := c.Get("top100:1:10").Get()
	require.True(t, ok)
	assert.Equal(t, "page", v)
	assert.Equal(t, 1, c.Len())
}

func TestSetOverwrites(t *testing.T) {
	c := New[int](Options{Name: "test"})
	defer c.Close()

	c.Set("k", 1)
	c.Set("k", 2)

	assert.Equal(t, 2, c.Get("k").MustGet())
	assert.Equal(t, 1, c.Len())
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	c := New[string](Options{Name: "test", TTL: time.Hour, Now: clock.Now})
	defer c.Close()

	c.Set("manga:1", "x")

	clock.Advance(time.Hour - time.Second)
	assert.True(t, c.Get("manga:1").IsPresent())

	clock.Advance(2 * time.Second)
	assert.True(t, c.Get("manga:1").IsAbsent())
}

func TestSetRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New[string](Options{Name: "test", TTL: time.Minute, Now: clock.Now})
	defer c.Close()

	c.Set("k", "old")
	clock.Advance(50 * time.Second)
	c.Set("k", "new")
	clock.Advance(50 * time.Second)

	assert.Equal(t, "new", c.Get("k").MustGet())
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	c := New[string](Options{Name: "test", TTL: time.Minute, Now: clock.Now})
	defer c.Close()

	c.Set("old", "a")
	clock.Advance(30 * time.Second)
	c.Set("young", "b")
	clock.Advance(31 * time.Second)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Get("young").IsPresent())
}

func TestJanitorSweepsPeriodically(t *testing.T) {
	clock := newFakeClock()
	c := New[string](Options{Name: "test", TTL: time.Minute, CheckPeriod: 5 * time.Millisecond, Now: clock.Now})
	defer c.Close()

	c.Set("a", "1")
	c.Set("b", "2")
	clock.Advance(2 * time.Minute)

	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMaxEntriesEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](Options{Name: "test", MaxEntries: 2})
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	_ = c.Get("a")
	c.Set("c", 3)

	assert.True(t, c.Get("a").IsPresent())
	assert.True(t, c.Get("b").IsAbsent())
	assert.True(t, c.Get("c").IsPresent())
}

func TestUnboundedByDefault(t *testing.T) {
	c := New[int](Options{Name: "test"})
	defer c.Close()

	for i := 0; i < 5000; i++ {
		c.Set(fmt.Sprintf("search:q%d:1:10", i), i)
	}
	assert.Equal(t, 5000, c.Len())
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New[int](Options{Name: "test", CheckPeriod: time.Millisecond})

	assert.False(t, c.Closed())
	c.Close()
	c.Close()
	assert.True(t, c.Closed())
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](Options{Name: "test", CheckPeriod: time.Millisecond})
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", i%50)
				c.Set(key, g)
				_ = c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
}

func TestDefaults(t *testing.T) {
	c := New[int](Options{})
	defer c.Close()

	assert.Equal(t, DefaultTTL, c.TTL())
	assert.Equal(t, DefaultCheckPeriod, c.CheckPeriod())

	select {
	case <-c.done:
		t.Fatal("janitor should be running with the default check period")
	default:
	}
}

func TestNegativeCheckPeriodDisablesJanitor(t *testing.T) {
	c := New[int](Options{Name: "test", CheckPeriod: -1})
	defer c.Close()

	assert.Zero(t, c.CheckPeriod())
	select {
	case <-c.done:
	default:
		t.Fatal("no janitor expected")
	}
}
