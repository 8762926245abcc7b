package verdict

import (
	"context"
	"fmt"

	"github.com/stagewiki/verdict/policy"
)

// Evaluator evaluates policy statements against a check request.
type Evaluator interface {
	Evaluate(ctx context.Context, policies []*policy.Policy, req *CheckRequest) (*CheckResult, error)
}

// DefaultEvaluator returns the built-in statement evaluator.
func DefaultEvaluator() Evaluator { return &statementEvaluator{} }

type statementEvaluator struct{}

func (e *statementEvaluator) Evaluate(_ context.Context, policies []*policy.Policy, req *CheckRequest) (*CheckResult, error) {
	if len(policies) == 0 {
		return nil, nil
	}

	var bestDeny *CheckResult
	var bestAllow *CheckResult

	for _, pol := range policies {
		if !pol.IsActive {
			continue
		}

		for i := range pol.Statements {
			st := &pol.Statements[i]

			matched, err := e.matches(st, req)
			if err != nil {
				return nil, fmt.Errorf("evaluate statement %d of policy %s: %w", i, pol.Name, err)
			}
			if !matched {
				continue
			}

			info := MatchInfo{
				Source: "policy",
				RuleID: pol.ID.String(),
				Detail: fmt.Sprintf("policy %q statement %d (%s)", pol.Name, i, st.Effect),
			}

			if st.Effect == policy.EffectDeny {
				if bestDeny == nil {
					bestDeny = &CheckResult{
						Allowed:   false,
						Decision:  DecisionDenyExplicit,
						Reason:    fmt.Sprintf("denied by policy %q", pol.Name),
						MatchedBy: []MatchInfo{info},
					}
				}
			} else if bestAllow == nil {
				bestAllow = &CheckResult{
					Allowed:   true,
					Decision:  DecisionAllow,
					MatchedBy: []MatchInfo{info},
				}
			}
		}
	}

	// Explicit deny always wins over allow.
	if bestDeny != nil {
		return bestDeny, nil
	}
	if bestAllow != nil {
		return bestAllow, nil
	}

	return nil, nil
}

// matches reports whether a statement applies to the request: the action
// and resource type must both be listed, and every condition must hold.
// Unknown enumeration tags are configuration errors, never skipped.
func (e *statementEvaluator) matches(st *policy.Statement, req *CheckRequest) (bool, error) {
	actionHit := false
	for _, tag := range st.Actions {
		a, err := ParseAction(tag)
		if err != nil {
			return false, err
		}
		if a == req.Action {
			actionHit = true
		}
	}
	if !actionHit {
		return false, nil
	}

	typeHit := false
	for _, tag := range st.ResourceTypes {
		rt, err := ParseResourceType(tag)
		if err != nil {
			return false, err
		}
		if rt == req.Resource.Type {
			typeHit = true
		}
	}
	if !typeHit {
		return false, nil
	}

	for i := range st.Conditions {
		ok, err := evaluateCondition(&st.Conditions[i], req)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// attrValue is a resolved attribute: either a scalar or an id set.
// present is false when the underlying attribute is null or empty,
// which makes any clause over it evaluate to false.
type attrValue struct {
	scalar  any
	set     IDSet
	isSet   bool
	present bool
}

func scalarAttr(v any, present bool) attrValue { return attrValue{scalar: v, present: present} }

func setAttr(s IDSet) attrValue { return attrValue{set: s, isSet: true, present: !s.IsEmpty()} }

// evaluateCondition applies one clause. The resource side comes from the
// descriptor via the condition key; the comparison side is either the
// literal or the named principal attribute.
func evaluateCondition(c *policy.Condition, req *CheckRequest) (bool, error) {
	resourceSide, err := resolveKey(c.Key, &req.Resource)
	if err != nil {
		return false, err
	}
	compareSide, err := resolveValue(c.Value, &req.Principal)
	if err != nil {
		return false, err
	}

	switch c.Operator {
	case policy.OpEquals, policy.OpNotEquals:
		if resourceSide.isSet {
			return false, fmt.Errorf("%w: operator %q requires a scalar key, got set-valued %q",
				ErrInvalidCondition, c.Operator, c.Key)
		}
		if compareSide.isSet {
			return false, fmt.Errorf("%w: operator %q requires a scalar value",
				ErrInvalidCondition, c.Operator)
		}
		if !resourceSide.present || !compareSide.present {
			return false, nil
		}
		eq := fmt.Sprint(resourceSide.scalar) == fmt.Sprint(compareSide.scalar)
		if c.Operator == policy.OpNotEquals {
			return !eq, nil
		}
		return eq, nil

	case policy.OpIn, policy.OpNotIn:
		if !resourceSide.present || !compareSide.present {
			return false, nil
		}
		hit := asSet(resourceSide).Intersects(asSet(compareSide))
		if c.Operator == policy.OpNotIn {
			return !hit, nil
		}
		return hit, nil

	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, c.Operator)
	}
}

func resolveKey(key policy.ConditionKey, r *ResourceDescriptor) (attrValue, error) {
	switch key {
	case policy.KeyAgencyID:
		return scalarAttr(r.AgencyID, r.AgencyID != ""), nil
	case policy.KeyGroupIDs:
		return setAttr(r.GroupIDs), nil
	case policy.KeyTalentIDs:
		return setAttr(r.TalentIDs), nil
	case policy.KeyIsOfficial:
		return scalarAttr(r.IsOfficial, true), nil
	default:
		return attrValue{}, fmt.Errorf("%w: unknown condition key %q", ErrInvalidCondition, key)
	}
}

func resolveValue(v policy.Value, p *Principal) (attrValue, error) {
	if !v.IsPlaceholder() {
		return literalAttr(v.Literal()), nil
	}
	switch v.Placeholder() {
	case policy.PrincipalAgencyID:
		return scalarAttr(p.AgencyID, p.AgencyID != ""), nil
	case policy.PrincipalGroupIDs:
		return setAttr(p.GroupIDs), nil
	case policy.PrincipalTalentIDs:
		return setAttr(p.TalentIDs), nil
	default:
		return attrValue{}, fmt.Errorf("%w: unknown placeholder %q", ErrInvalidCondition, v.Placeholder())
	}
}

func literalAttr(v any) attrValue {
	switch lit := v.(type) {
	case nil:
		return scalarAttr(nil, false)
	case []string:
		return setAttr(NewIDSet(lit...))
	case IDSet:
		return setAttr(lit)
	case []any:
		items := make([]string, 0, len(lit))
		for _, item := range lit {
			items = append(items, fmt.Sprint(item))
		}
		return setAttr(NewIDSet(items...))
	case string:
		return scalarAttr(lit, lit != "")
	default:
		return scalarAttr(lit, true)
	}
}

// asSet widens a resolved attribute to a set: scalars become singletons.
func asSet(a attrValue) IDSet {
	if a.isSet {
		return a.set
	}
	return NewIDSet(fmt.Sprint(a.scalar))
}
