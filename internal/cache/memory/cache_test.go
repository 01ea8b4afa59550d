package memory

import (
	"testing"
	"time"

	"github.com/kitbuilder587/research-mcp/internal/search"
)

func TestCache_SetGet(t *testing.T) {
	cache := New(time.Minute)
	defer cache.Stop()

	resp := &search.Response{Query: "fintech trends"}
	cache.Set("k1", resp)

	got, ok := cache.Get("k1")
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if got.Query != "fintech trends" {
		t.Errorf("Get() query = %q, want %q", got.Query, "fintech trends")
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	cache := New(time.Minute)
	defer cache.Stop()

	if _, ok := cache.Get("nope"); ok {
		t.Error("Get() hit on unknown key")
	}
}

func TestCache_Expiry(t *testing.T) {
	cache := New(10 * time.Millisecond)
	defer cache.Stop()

	cache.Set("k1", &search.Response{Query: "q"})
	time.Sleep(30 * time.Millisecond)

	if _, ok := cache.Get("k1"); ok {
		t.Error("Get() hit on expired entry")
	}
}

func TestCache_Delete(t *testing.T) {
	cache := New(time.Minute)
	defer cache.Stop()

	cache.Set("k1", &search.Response{})
	cache.Delete("k1")

	if _, ok := cache.Get("k1"); ok {
		t.Error("Get() hit after Delete()")
	}
}

func TestCache_StopIsIdempotent(t *testing.T) {
	cache := New(time.Minute)
	cache.Stop()
	cache.Stop() // не должно паниковать
}
