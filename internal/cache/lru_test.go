package cache

import (
	"strconv"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLRU(size int, ttl time.Duration) (*LRU[int], *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[int](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRU_Expiry(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clk.t = clk.t.Add(30 * time.Second)
	c.Set("b", 3) // refreshes expiry

	clk.t = clk.t.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != 3 {
		t.Errorf("Get(b) = %d, %v", v, ok)
	}

	clk.t = clk.t.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRU_Add(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)

	if !c.Add("k", 1) {
		t.Fatal("first Add should store")
	}
	if c.Add("k", 2) {
		t.Fatal("second Add should report a duplicate")
	}
	if v, _ := c.Get("k"); v != 1 {
		t.Errorf("value = %d, want 1", v)
	}

	clk.t = clk.t.Add(2 * time.Minute)
	if !c.Add("k", 3) {
		t.Error("Add after expiry should store")
	}
}

func TestManager_Sweep(t *testing.T) {
	a, clk := newTestLRU(10, time.Minute)
	b := NewLRU[int](10, time.Hour)
	b.now = clk.now
	for i := range 3 {
		a.Set(strconv.Itoa(i), i)
		b.Set(strconv.Itoa(i), i)
	}

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)

	clk.t = clk.t.Add(10 * time.Minute)
	if n := m.Sweep(); n != 3 {
		t.Errorf("Sweep() = %d, want 3", n)
	}
	if a.Size() != 0 || b.Size() != 3 {
		t.Errorf("sizes = %d, %d", a.Size(), b.Size())
	}
}

func TestManager_StartStop(t *testing.T) {
	c := NewLRU[int](10, time.Nanosecond)
	c.Set("a", 1)

	removed := make(chan int, 1)
	m := NewManager(func(n int) {
		select {
		case removed <- n:
		default:
		}
	})
	m.Register(c)
	m.StartCleanup(time.Millisecond)

	select {
	case n := <-removed:
		if n != 1 {
			t.Errorf("removed = %d, want 1", n)
		}
	case <-time.After(2 * time.Second):
		t.Error("cleanup never ran")
	}
	m.Stop()
}
