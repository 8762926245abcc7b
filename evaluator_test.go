package verdict

import (
	"context"
	"errors"
	"testing"

	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
)

func activePolicy(name string, statements ...policy.Statement) *policy.Policy {
	return &policy.Policy{
		ID:         id.NewPolicyID(),
		Name:       name,
		IsActive:   true,
		Statements: statements,
	}
}

func songEditRequest() *CheckRequest {
	return &CheckRequest{
		Principal: Principal{
			ID:        "p1",
			AccountID: "acct1",
			Role:      RoleNone,
			AgencyID:  "agency1",
			GroupIDs:  NewIDSet("group1"),
			TalentIDs: NewIDSet("talent1"),
		},
		Action: ActionEdit,
		Resource: ResourceDescriptor{
			Type:      ResourceSong,
			ID:        "s1",
			AgencyID:  "agency1",
			GroupIDs:  NewIDSet("group1"),
			TalentIDs: NewIDSet("talent1"),
		},
	}
}

func TestEvaluatorAllowMatch(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("editors", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
	})

	result, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, songEditRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || !result.Allowed {
		t.Fatalf("expected allow, got %+v", result)
	}
	if result.MatchedBy[0].RuleID != pol.ID.String() {
		t.Fatalf("expected match on %s, got %s", pol.ID, result.MatchedBy[0].RuleID)
	}
}

func TestEvaluatorNoMatchReturnsNil(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("approvers", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"approve"},
		ResourceTypes: []string{"song"},
	})

	result, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, songEditRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected no outcome, got %+v", result)
	}
}

func TestEvaluatorDenyOverridesAllow(t *testing.T) {
	ev := DefaultEvaluator()
	allow := activePolicy("editors", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
	})
	deny := activePolicy("freeze", policy.Statement{
		Effect:        policy.EffectDeny,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
	})

	// Deny wins regardless of evaluation order.
	for _, policies := range [][]*policy.Policy{{allow, deny}, {deny, allow}} {
		result, err := ev.Evaluate(context.Background(), policies, songEditRequest())
		if err != nil {
			t.Fatal(err)
		}
		if result == nil || result.Allowed {
			t.Fatalf("expected deny, got %+v", result)
		}
		if result.Decision != DecisionDenyExplicit {
			t.Fatalf("expected %s, got %s", DecisionDenyExplicit, result.Decision)
		}
	}
}

func TestEvaluatorSkipsInactivePolicies(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("editors", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
	})
	pol.IsActive = false

	result, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, songEditRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("inactive policy matched: %+v", result)
	}
}

func TestEvaluatorPlaceholderAgencyEquality(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("own-agency", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
		Conditions: []policy.Condition{{
			Key:      policy.KeyAgencyID,
			Operator: policy.OpEquals,
			Value:    policy.PrincipalAttr(policy.PrincipalAgencyID),
		}},
	})

	req := songEditRequest()
	result, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, req)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || !result.Allowed {
		t.Fatalf("expected allow for matching agency, got %+v", result)
	}

	req.Resource.AgencyID = "agency2"
	result, err = ev.Evaluate(context.Background(), []*policy.Policy{pol}, req)
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected no match for foreign agency, got %+v", result)
	}
}

func TestEvaluatorAbsentAttributeIsFalse(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("own-agency", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
		Conditions: []policy.Condition{{
			Key:      policy.KeyAgencyID,
			Operator: policy.OpEquals,
			Value:    policy.PrincipalAttr(policy.PrincipalAgencyID),
		}},
	})

	// Neither side has an agency. Absent attributes never match, even
	// against each other.
	req := songEditRequest()
	req.Principal.AgencyID = ""
	req.Resource.AgencyID = ""
	result, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, req)
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected no match on absent attributes, got %+v", result)
	}
}

func TestEvaluatorSetIntersection(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("talent-credits", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
		Conditions: []policy.Condition{{
			Key:      policy.KeyTalentIDs,
			Operator: policy.OpIn,
			Value:    policy.PrincipalAttr(policy.PrincipalTalentIDs),
		}},
	})

	req := songEditRequest()
	result, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, req)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || !result.Allowed {
		t.Fatalf("expected allow on talent overlap, got %+v", result)
	}

	req.Resource.TalentIDs = NewIDSet("talent9")
	result, err = ev.Evaluate(context.Background(), []*policy.Policy{pol}, req)
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected no match without overlap, got %+v", result)
	}
}

func TestEvaluatorLiteralConditions(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("official-freeze", policy.Statement{
		Effect:        policy.EffectDeny,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
		Conditions: []policy.Condition{{
			Key:      policy.KeyIsOfficial,
			Operator: policy.OpEquals,
			Value:    policy.Literal(true),
		}},
	})

	req := songEditRequest()
	req.Resource.IsOfficial = true
	result, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, req)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || result.Decision != DecisionDenyExplicit {
		t.Fatalf("expected explicit deny on official record, got %+v", result)
	}

	req.Resource.IsOfficial = false
	result, err = ev.Evaluate(context.Background(), []*policy.Policy{pol}, req)
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected draft record untouched, got %+v", result)
	}
}

func TestEvaluatorScalarOperatorOnSetKey(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("bad", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
		Conditions: []policy.Condition{{
			Key:      policy.KeyGroupIDs,
			Operator: policy.OpEquals,
			Value:    policy.Literal("group1"),
		}},
	})

	_, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, songEditRequest())
	if !errors.Is(err, ErrInvalidCondition) {
		t.Fatalf("expected ErrInvalidCondition, got %v", err)
	}
}

func TestEvaluatorUnknownActionTag(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("bad", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"destroy"},
		ResourceTypes: []string{"song"},
	})

	if _, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, songEditRequest()); err == nil {
		t.Fatal("expected error for unknown action tag")
	}
}

func TestEvaluatorNotInOperator(t *testing.T) {
	ev := DefaultEvaluator()
	pol := activePolicy("outsiders", policy.Statement{
		Effect:        policy.EffectAllow,
		Actions:       []string{"edit"},
		ResourceTypes: []string{"song"},
		Conditions: []policy.Condition{{
			Key:      policy.KeyGroupIDs,
			Operator: policy.OpNotIn,
			Value:    policy.PrincipalAttr(policy.PrincipalGroupIDs),
		}},
	})

	// Overlapping groups: not_in is false.
	result, err := ev.Evaluate(context.Background(), []*policy.Policy{pol}, songEditRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected no match on overlap, got %+v", result)
	}

	req := songEditRequest()
	req.Resource.GroupIDs = NewIDSet("group9")
	result, err = ev.Evaluate(context.Background(), []*policy.Policy{pol}, req)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || !result.Allowed {
		t.Fatalf("expected allow on disjoint groups, got %+v", result)
	}
}
