package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := &Cache{}
	c.Set("k1", "v1", 0)

	v, ok := c.Get("k1")
	if !ok || v != "v1" {
		t.Errorf("Get = %q, %v, want v1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := &Cache{}
	c.Set("k1", "v1", 10*time.Millisecond)

	if _, ok := c.Get("k1"); !ok {
		t.Fatal("value missing before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k1"); ok {
		t.Error("value present after expiry")
	}
}

func TestCache_Delete(t *testing.T) {
	c := &Cache{}
	c.Set("k1", "v1", 0)
	c.Delete("k1")
	if _, ok := c.Get("k1"); ok {
		t.Error("value present after Delete")
	}
}

func TestCache_InvalidateTag(t *testing.T) {
	c := &Cache{}
	c.Set("a", "1", 0, "transfer:1")
	c.Set("b", "2", 0, "transfer:1")
	c.Set("c", "3", 0, "transfer:2")

	c.InvalidateTag("transfer:1")

	if _, ok := c.Get("a"); ok {
		t.Error("a present after tag invalidation")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b present after tag invalidation")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c evicted by unrelated tag")
	}
}

func TestCache_InvalidateUnknownTag(t *testing.T) {
	c := &Cache{}
	c.Set("a", "1", 0)
	c.InvalidateTag("nope")
	if _, ok := c.Get("a"); !ok {
		t.Error("untagged value evicted")
	}
}

func TestCache_Flush(t *testing.T) {
	c := &Cache{}
	c.Set("a", "1", 0, "t")
	c.Set("b", "2", 0)
	c.Flush()
	if _, ok := c.Get("a"); ok {
		t.Error("a present after Flush")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b present after Flush")
	}
}

func TestCache_GetInstanceSingleton(t *testing.T) {
	if GetInstance() != GetInstance() {
		t.Error("GetInstance returned different instances")
	}
}
