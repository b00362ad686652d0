package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10, nil)
	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok || val != 42 {
		t.Errorf("Get(key1) = %d, %v, want 42, true", val, ok)
	}
	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](10, nil)
	calls := 0
	create := func(string) (int, error) {
		calls++
		return 100, nil
	}

	for range 2 {
		val, err := c.GetOrCreate("key1", create)
		if err != nil || val != 100 {
			t.Fatalf("GetOrCreate = %d, %v, want 100, nil", val, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	errBoom := errors.New("boom")
	if _, err := c.GetOrCreate("bad", func(string) (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want %v", err, errBoom)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed create was cached")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](3, func(k string, _ int) { evicted = append(evicted, k) })
	for i := range 3 {
		c.Set(strconv.Itoa(i), i)
	}
	// Touch "0" so that "1" becomes the oldest.
	c.Get("0")
	c.Set("3", 3)

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if len(evicted) != 1 || evicted[0] != "1" {
		t.Errorf("evicted = %v, want [1]", evicted)
	}
	if _, ok := c.Get("0"); !ok {
		t.Error("recently used entry was evicted")
	}
}

func TestCacheReplaceAndClear(t *testing.T) {
	var evicted []int
	c := New[string, int](0, func(_ string, v int) { evicted = append(evicted, v) })
	c.Set("a", 1)
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d, want 2", v)
	}
	c.Set("b", 3)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if len(evicted) != 3 {
		t.Errorf("evicted = %v, want the replaced value and both cleared ones", evicted)
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](64, nil)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				k := (n*100 + j) % 128
				if _, err := c.GetOrCreate(k, func(k int) (int, error) { return k * k, nil }); err != nil {
					t.Error(err)
				}
				if v, ok := c.Get(k); ok && v != k*k {
					t.Errorf("Get(%d) = %d", k, v)
				}
			}
		}(i)
	}
	wg.Wait()
	if n := c.Len(); n == 0 || n > 64 {
		t.Errorf("Len() = %d, want 1..64", n)
	}
}

func TestLRUList(t *testing.T) {
	var l lruList[int]
	a := l.PushFront(1)
	l.PushFront(2)
	l.PushFront(3)
	l.MoveToFront(a)

	var got []int
	for l.Len() > 0 {
		k, _ := l.RemoveOldest()
		got = append(got, k)
	}
	if want := []int{2, 3, 1}; len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("removal order = %v, want %v", got, want)
	}
	if _, ok := l.RemoveOldest(); ok {
		t.Error("RemoveOldest on empty list succeeded")
	}
}
