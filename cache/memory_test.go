package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stagewiki/verdict"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	req := &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", Role: verdict.RoleCollaborator},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	}
	result := &verdict.CheckResult{Allowed: true, Decision: verdict.DecisionAllow}

	// Miss
	_, ok := c.Get(ctx, "acct1", req)
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, "acct1", req, result)
	got, ok := c.Get(ctx, "acct1", req)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.Allowed {
		t.Fatal("expected allowed")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	req := &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", Role: verdict.RoleCollaborator},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	}
	result := &verdict.CheckResult{Allowed: true}

	c.Set(ctx, "acct1", req, result)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "acct1", req)
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateAccount(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	req1 := &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", Role: verdict.RoleGroupActor},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceGroup, ID: "g1"},
	}
	req2 := &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p2", Role: verdict.RoleGroupActor},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceGroup, ID: "g2"},
	}

	c.Set(ctx, "acct1", req1, &verdict.CheckResult{Allowed: true})
	c.Set(ctx, "acct1", req2, &verdict.CheckResult{Allowed: false})
	c.Set(ctx, "acct2", req1, &verdict.CheckResult{Allowed: true})

	c.InvalidateAccount(ctx, "acct1")

	if _, ok := c.Get(ctx, "acct1", req1); ok {
		t.Fatal("acct1 req1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "acct1", req2); ok {
		t.Fatal("acct1 req2 should be invalidated")
	}
	if _, ok := c.Get(ctx, "acct2", req1); !ok {
		t.Fatal("acct2 req1 should still be cached")
	}
}

func TestMemoryCacheInvalidatePrincipal(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	req1 := &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", Role: verdict.RoleTalentActor},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceTalent, ID: "t1"},
	}
	req2 := &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p2", Role: verdict.RoleTalentActor},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceTalent, ID: "t1"},
	}

	c.Set(ctx, "acct1", req1, &verdict.CheckResult{Allowed: true})
	c.Set(ctx, "acct1", req2, &verdict.CheckResult{Allowed: true})

	c.InvalidatePrincipal(ctx, "acct1", "p1")

	if _, ok := c.Get(ctx, "acct1", req1); ok {
		t.Fatal("p1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "acct1", req2); !ok {
		t.Fatal("p2 should still be cached")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		req := &verdict.CheckRequest{
			Principal: verdict.Principal{ID: "p1", Role: verdict.RoleCollaborator},
			Action:    verdict.ActionEdit,
			Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: string(rune('a' + i))},
		}
		c.Set(ctx, "acct1", req, &verdict.CheckResult{Allowed: true})
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}
