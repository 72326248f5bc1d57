package cache

import (
	"context"
	"testing"
	"time"
)

func TestNetworkHash_Stable(t *testing.T) {
	payload := map[string]any{"name": "n", "points": map[string]int{"a": 1, "b": 2}}

	h1, err := NetworkHash(payload)
	if err != nil {
		t.Fatalf("NetworkHash: %v", err)
	}
	h2, err := NetworkHash(payload)
	if err != nil {
		t.Fatalf("NetworkHash: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash not stable: %s != %s", h1, h2)
	}
	if len(h1) != 16 {
		t.Errorf("hash length = %d, want 16 hex chars", len(h1))
	}
}

func TestNetworkHash_Distinguishes(t *testing.T) {
	h1, _ := NetworkHash(map[string]int{"capacity": 100})
	h2, _ := NetworkHash(map[string]int{"capacity": 101})
	if h1 == h2 {
		t.Error("different payloads must hash differently")
	}
}

func TestParamsFingerprint_OrderIndependent(t *testing.T) {
	a := map[string]any{"x": 1, "y": "two", "z": 3.0}
	b := map[string]any{"z": 3.0, "x": 1, "y": "two"}
	if ParamsFingerprint(a) != ParamsFingerprint(b) {
		t.Error("fingerprint must not depend on map order")
	}
	if ParamsFingerprint(nil) != "" {
		t.Error("empty params fingerprint should be empty")
	}
}

func TestBuildResultKey(t *testing.T) {
	key := BuildResultKey("abc", "minimize-cost", "fp", "pp")
	want := "result:abc:minimize-cost:fp:pp"
	if key != want {
		t.Errorf("key = %q, want %q", key, want)
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	mem := NewMemoryCache(0)
	defer mem.Close()
	rc := NewResultCache(mem, time.Minute)
	ctx := context.Background()

	type payload struct {
		Status string  `json:"status"`
		Value  float64 `json:"value"`
	}

	if err := rc.Set(ctx, "k", payload{Status: "Optimal", Value: 42}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out payload
	hit, err := rc.Get(ctx, "k", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if out.Value != 42 || out.Status != "Optimal" {
		t.Errorf("round trip mismatch: %+v", out)
	}

	hit, err = rc.Get(ctx, "missing", &out)
	if err != nil || hit {
		t.Errorf("miss: hit=%t err=%v", hit, err)
	}
}

func TestResultCache_CorruptEntry(t *testing.T) {
	mem := NewMemoryCache(0)
	defer mem.Close()
	rc := NewResultCache(mem, time.Minute)
	ctx := context.Background()

	_ = mem.Set(ctx, "bad", []byte("{not json"), time.Minute)

	var out struct{ X int }
	hit, err := rc.Get(ctx, "bad", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("corrupt entry must read as a miss")
	}
	if ok, _ := mem.Exists(ctx, "bad"); ok {
		t.Error("corrupt entry must be deleted")
	}
}
