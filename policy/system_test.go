package policy

import (
	"reflect"
	"testing"
)

func TestSystemCatalogStable(t *testing.T) {
	first := SystemCatalog()
	second := SystemCatalog()

	if len(first) != len(second) {
		t.Fatalf("catalog size changed: %d != %d", len(first), len(second))
	}
	wantNames := []string{
		SystemFullAccess, SystemContributor, SystemDenyAgencyApproval,
		SystemDenyRollback, SystemTalentRepresentation, SystemAgencyRepresentation,
	}
	if len(first) != len(wantNames) {
		t.Fatalf("catalog has %d entries, want %d", len(first), len(wantNames))
	}
	for i, name := range wantNames {
		if first[i].Name != name {
			t.Fatalf("catalog entry %d is %s, want %s", i, first[i].Name, name)
		}
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("catalog order changed at %d: %s != %s", i, first[i].Name, second[i].Name)
		}
		if !reflect.DeepEqual(first[i].Statements, second[i].Statements) {
			t.Fatalf("catalog statements differ for %s", first[i].Name)
		}
	}
}

func TestSystemCatalogIsolation(t *testing.T) {
	def := FullAccess()
	def.Statements[0].Actions[0] = "mutated"
	def.IsActive = false

	fresh := FullAccess()
	if fresh.Statements[0].Actions[0] == "mutated" {
		t.Fatal("catalog definitions share statement state")
	}
	if !fresh.IsActive {
		t.Fatal("catalog definitions share policy state")
	}
}

func TestSystemCatalogShape(t *testing.T) {
	for _, p := range SystemCatalog() {
		if !p.IsSystem {
			t.Fatalf("%s not marked as system", p.Name)
		}
		if !p.IsActive {
			t.Fatalf("%s not active", p.Name)
		}
		if p.AccountID != "" {
			t.Fatalf("%s owned by account %q", p.Name, p.AccountID)
		}
		if len(p.Statements) == 0 {
			t.Fatalf("%s has no statements", p.Name)
		}
		if !p.ID.IsNil() {
			t.Fatalf("%s carries a pre-assigned id", p.Name)
		}
	}
}

func TestContributorIsDraftTier(t *testing.T) {
	p := Contributor()
	if len(p.Statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(p.Statements))
	}
	st := p.Statements[0]
	if st.Effect != EffectAllow {
		t.Fatalf("expected allow, got %s", st.Effect)
	}
	if !reflect.DeepEqual(st.Actions, []string{"create", "edit", "submit"}) {
		t.Fatalf("unexpected actions: %v", st.Actions)
	}
	if !reflect.DeepEqual(st.ResourceTypes, []string{"agency", "group", "talent", "song"}) {
		t.Fatalf("unexpected resource types: %v", st.ResourceTypes)
	}
	if len(st.Conditions) != 0 {
		t.Fatalf("draft tier should be unconditioned, got %+v", st.Conditions)
	}
}

func TestDenyPoliciesDeny(t *testing.T) {
	for _, p := range []*Policy{DenyAgencyApproval(), DenyRollback()} {
		for _, st := range p.Statements {
			if st.Effect != EffectDeny {
				t.Fatalf("%s carries a non-deny statement", p.Name)
			}
		}
	}
}

func TestRepresentationPoliciesConditioned(t *testing.T) {
	talent := TalentRepresentation()
	if len(talent.Statements[0].Conditions) == 0 {
		t.Fatal("talent representation is unconditioned")
	}
	if c := talent.Statements[0].Conditions[0]; c.Key != KeyTalentIDs || !c.Value.IsPlaceholder() {
		t.Fatalf("unexpected talent condition: %+v", c)
	}

	agency := AgencyRepresentation()
	if len(agency.Statements[0].Conditions) == 0 {
		t.Fatal("agency representation is unconditioned")
	}
	if c := agency.Statements[0].Conditions[0]; c.Key != KeyAgencyID || c.Value.Placeholder() != PrincipalAgencyID {
		t.Fatalf("unexpected agency condition: %+v", c)
	}
}
