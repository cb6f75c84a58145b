package safemap

import (
	"sync"
	"testing"
)

func TestAddRejectsDuplicate(t *testing.T) {
	var m Map[string, int]
	if !m.Add("a", 1) {
		t.Fatal("Add: first insert should succeed")
	}
	if m.Add("a", 2) {
		t.Fatal("Add: duplicate insert should fail")
	}
	v, ok := m.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get = %v, %v; want 1, true", v, ok)
	}
}

func TestPutOverwrites(t *testing.T) {
	var m Map[string, int]
	m.Put("a", 1)
	m.Put("a", 2)
	v, ok := m.Get("a")
	if !ok || v != 2 {
		t.Errorf("Get = %v, %v; want 2, true", v, ok)
	}
}

func TestDelRemovesAndReturnsValue(t *testing.T) {
	var m Map[string, int]
	m.Put("a", 1)
	v, ok := m.Del("a")
	if !ok || v != 1 {
		t.Fatalf("Del = %v, %v; want 1, true", v, ok)
	}
	if _, ok := m.Get("a"); ok {
		t.Error("Get after Del: still present")
	}
	if _, ok := m.Del("a"); ok {
		t.Error("Del on missing key: want false")
	}
}

func TestRangeStopsEarly(t *testing.T) {
	var m Map[int, int]
	for i := 0; i < 10; i++ {
		m.Put(i, i*i)
	}
	seen := 0
	m.Range(func(k, v int) bool {
		seen++
		return seen < 3
	})
	if seen != 3 {
		t.Errorf("seen = %d, want 3", seen)
	}
}

func TestConcurrentAdd(t *testing.T) {
	var m Map[int, int]
	var wg sync.WaitGroup
	successes := make([]bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			successes[i] = m.Add(i%10, i)
		}(i)
	}
	wg.Wait()
	if m.Len() != 10 {
		t.Errorf("Len = %d, want 10", m.Len())
	}
}
