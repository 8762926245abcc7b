package plugin

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
)

// testPlugin implements Plugin + PolicyCreated + AfterCheck.
type testPlugin struct {
	policyCreatedCalled bool
	afterCheckCalled    bool
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnPolicyCreated(_ context.Context, _ *policy.Policy) error {
	t.policyCreatedCalled = true
	return nil
}

func (t *testPlugin) OnAfterCheck(_ context.Context, _, _ any) error {
	t.afterCheckCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch PolicyCreated to testPlugin only.
	reg.EmitPolicyCreated(ctx, &policy.Policy{ID: id.NewPolicyID(), Name: "custom"})
	if !tp.policyCreatedCalled {
		t.Fatal("OnPolicyCreated was not called")
	}

	// Should dispatch AfterCheck.
	reg.EmitAfterCheck(ctx, nil, nil)
	if !tp.afterCheckCalled {
		t.Fatal("OnAfterCheck was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitBeforeCheck(ctx, nil)
	reg.EmitPolicyDeleted(ctx, id.NewPolicyID())
	reg.EmitGrantRevoked(ctx, id.NewGrantID())
	reg.EmitShutdown(ctx)
}
