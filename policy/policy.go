// Package policy defines the declarative Policy entity: ordered statements
// with attribute conditions, resolved against live principal and resource
// context at evaluation time.
package policy

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stagewiki/verdict/id"
)

// Effect is the statement outcome, allow or deny.
type Effect string

const (
	// EffectAllow permits matching requests.
	EffectAllow Effect = "allow"

	// EffectDeny blocks matching requests.
	EffectDeny Effect = "deny"
)

// Policy is a named, ordered collection of statements. System policies
// are seeded catalog entries and immutable; custom policies are authored
// by account administrators. Statement order is preserved for audit but
// deny-overrides makes the combination order-independent.
type Policy struct {
	ID          id.PolicyID    `json:"id" db:"id"`
	AccountID   string         `json:"account_id" db:"account_id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description,omitempty" db:"description"`
	Statements  []Statement    `json:"statements" db:"-"`
	IsSystem    bool           `json:"is_system" db:"is_system"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	Version     int            `json:"version" db:"version"`
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy of the policy. Catalog definitions hand out
// clones so callers can never mutate the seeded statements.
func (p *Policy) Clone() *Policy {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Statements = make([]Statement, len(p.Statements))
	for i, s := range p.Statements {
		cp.Statements[i] = s.clone()
	}
	if p.Metadata != nil {
		cp.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// Statement is one rule inside a policy: an effect applied to a set of
// actions on a set of resource types, optionally gated by conditions.
// Action and resource-type tags are plain strings here to avoid an
// import cycle with the root package; they are validated against the
// closed enumerations at evaluation time.
type Statement struct {
	Effect        Effect      `json:"effect"`
	Actions       []string    `json:"actions"`
	ResourceTypes []string    `json:"resource_types"`
	Conditions    []Condition `json:"conditions,omitempty"`
}

func (s Statement) clone() Statement {
	cp := s
	cp.Actions = append([]string(nil), s.Actions...)
	cp.ResourceTypes = append([]string(nil), s.ResourceTypes...)
	cp.Conditions = append([]Condition(nil), s.Conditions...)
	return cp
}

// Condition is a single attribute predicate: a resource attribute,
// selected by Key, compared against a literal or a principal placeholder.
// All conditions on a statement combine with AND.
type Condition struct {
	ID       id.ConditionID `json:"id,omitempty"`
	Key      ConditionKey   `json:"key"`
	Operator Operator       `json:"operator"`
	Value    Value          `json:"value"`
}

// ConditionKey selects the resource attribute a condition reads.
type ConditionKey string

const (
	// KeyAgencyID selects the resource's owning agency id (scalar).
	KeyAgencyID ConditionKey = "agency_id"

	// KeyGroupIDs selects the resource's owning group ids (set).
	KeyGroupIDs ConditionKey = "group_ids"

	// KeyTalentIDs selects the resource's owning talent ids (set).
	KeyTalentIDs ConditionKey = "talent_ids"

	// KeyIsOfficial selects the resource's official-status flag (scalar).
	KeyIsOfficial ConditionKey = "is_official"
)

// Operator is a comparison operator for conditions.
type Operator string

const (
	// OpEquals checks scalar equality.
	OpEquals Operator = "eq"

	// OpNotEquals checks scalar inequality.
	OpNotEquals Operator = "neq"

	// OpIn checks set membership; either side may be a set.
	OpIn Operator = "in"

	// OpNotIn checks set non-membership; either side may be a set.
	OpNotIn Operator = "not_in"
)

// Placeholder names a principal attribute substituted at evaluation
// time. Placeholders are never stored resolved.
type Placeholder string

const (
	// PrincipalAgencyID resolves to the principal's agency id (scalar).
	PrincipalAgencyID Placeholder = "principal.agency_id"

	// PrincipalGroupIDs resolves to the principal's group ids (set).
	PrincipalGroupIDs Placeholder = "principal.group_ids"

	// PrincipalTalentIDs resolves to the principal's talent ids (set).
	PrincipalTalentIDs Placeholder = "principal.talent_ids"
)

// Value is the comparison side of a condition: either a literal or a
// placeholder resolved from principal context. The two variants are
// tagged so that a literal string equal to a placeholder's textual form
// can never be confused with the placeholder itself.
type Value struct {
	literal     any
	placeholder Placeholder
	isRef       bool
}

// Literal wraps a literal comparison value.
func Literal(v any) Value { return Value{literal: v} }

// PrincipalAttr wraps a placeholder reference to a principal attribute.
func PrincipalAttr(p Placeholder) Value { return Value{placeholder: p, isRef: true} }

// IsPlaceholder reports whether the value is a principal placeholder.
func (v Value) IsPlaceholder() bool { return v.isRef }

// Placeholder returns the placeholder reference. Only meaningful when
// IsPlaceholder reports true.
func (v Value) Placeholder() Placeholder { return v.placeholder }

// Literal returns the literal value. Only meaningful when IsPlaceholder
// reports false.
func (v Value) Literal() any { return v.literal }

// valueJSON is the wire form of Value. The kind discriminator keeps the
// round trip lossless.
type valueJSON struct {
	Kind        string          `json:"kind"`
	Literal     json.RawMessage `json:"literal,omitempty"`
	Placeholder Placeholder     `json:"placeholder,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isRef {
		return json.Marshal(valueJSON{Kind: "placeholder", Placeholder: v.placeholder})
	}
	raw, err := json.Marshal(v.literal)
	if err != nil {
		return nil, fmt.Errorf("policy: marshal literal: %w", err)
	}
	return json.Marshal(valueJSON{Kind: "literal", Literal: raw})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var wire valueJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("policy: unmarshal value: %w", err)
	}
	switch wire.Kind {
	case "placeholder":
		*v = PrincipalAttr(wire.Placeholder)
		return nil
	case "literal":
		var lit any
		if len(wire.Literal) > 0 {
			if err := json.Unmarshal(wire.Literal, &lit); err != nil {
				return fmt.Errorf("policy: unmarshal literal: %w", err)
			}
		}
		*v = Literal(lit)
		return nil
	default:
		return fmt.Errorf("policy: unknown value kind %q", wire.Kind)
	}
}

// ListFilter contains filters for listing policies.
type ListFilter struct {
	AccountID string `json:"account_id,omitempty"`
	IsSystem  *bool  `json:"is_system,omitempty"`
	IsActive  *bool  `json:"is_active,omitempty"`
	Search    string `json:"search,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}
