package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.(string) != "v" {
		t.Fatalf("got %v", got)
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	c.Set("k", 1, -time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("k", 1, time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after clear")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected miss after clear")
	}
}
