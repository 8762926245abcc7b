package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/stagewiki/verdict"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, verdict.ErrSystemPolicyImmutable) || errors.Is(err, verdict.ErrDefaultGroupExists) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrDuplicateGrant) || errors.Is(err, verdict.ErrAffiliationInactive) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrInvalidStatement) || errors.Is(err, verdict.ErrInvalidCondition) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, verdict.ErrPolicyNotFound) ||
		errors.Is(err, verdict.ErrGroupNotFound) ||
		errors.Is(err, verdict.ErrGrantNotFound) ||
		errors.Is(err, verdict.ErrAffiliationNotFound) ||
		errors.Is(err, verdict.ErrDecisionLogNotFound)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
