package policy

import (
	"encoding/json"
	"testing"
)

func TestValueJSONRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   Value
	}{
		{"string literal", Literal("agency1")},
		{"bool literal", Literal(true)},
		{"list literal", Literal([]any{"a", "b"})},
		{"placeholder", PrincipalAttr(PrincipalTalentIDs)},
		// A literal spelled like a placeholder must stay a literal.
		{"placeholder-shaped literal", Literal("principal.talent_ids")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			var out Value
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatal(err)
			}
			if out.IsPlaceholder() != tc.in.IsPlaceholder() {
				t.Fatalf("kind changed across round trip: %s", data)
			}
			if tc.in.IsPlaceholder() {
				if out.Placeholder() != tc.in.Placeholder() {
					t.Fatalf("placeholder changed: %v != %v", out.Placeholder(), tc.in.Placeholder())
				}
				return
			}
			inRaw, _ := json.Marshal(tc.in.Literal())
			outRaw, _ := json.Marshal(out.Literal())
			if string(inRaw) != string(outRaw) {
				t.Fatalf("literal changed: %s != %s", outRaw, inRaw)
			}
		})
	}
}

func TestValueUnmarshalRejectsUnknownKind(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"kind":"expression","literal":"1"}`), &v); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestStatementJSONRoundTrip(t *testing.T) {
	st := Statement{
		Effect:        EffectDeny,
		Actions:       []string{"approve", "publish"},
		ResourceTypes: []string{"agency"},
		Conditions: []Condition{{
			Key:      KeyAgencyID,
			Operator: OpEquals,
			Value:    PrincipalAttr(PrincipalAgencyID),
		}},
	}

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	var out Statement
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Effect != EffectDeny || len(out.Conditions) != 1 {
		t.Fatalf("unexpected statement: %+v", out)
	}
	if !out.Conditions[0].Value.IsPlaceholder() {
		t.Fatal("condition lost its placeholder")
	}
}

func TestPolicyClone(t *testing.T) {
	p := &Policy{
		Name: "editors",
		Statements: []Statement{{
			Effect:        EffectAllow,
			Actions:       []string{"edit"},
			ResourceTypes: []string{"song"},
		}},
		Metadata: map[string]any{"team": "wiki"},
	}

	cp := p.Clone()
	cp.Statements[0].Actions[0] = "rollback"
	cp.Metadata["team"] = "other"

	if p.Statements[0].Actions[0] != "edit" {
		t.Fatal("clone shares statement backing array")
	}
	if p.Metadata["team"] != "wiki" {
		t.Fatal("clone shares metadata map")
	}
}
