package verdict

import "testing"

func talentPrincipal() *Principal {
	return &Principal{
		ID:        "p1",
		AccountID: "acct1",
		Role:      RoleTalentActor,
		AgencyID:  "agency1",
		GroupIDs:  NewIDSet("group1"),
		TalentIDs: NewIDSet("talent1"),
	}
}

func TestAdministratorBypassesScope(t *testing.T) {
	p := &Principal{ID: "p1", Role: RoleAdministrator}
	// No agency, group, or talent context at all.
	r := &ResourceDescriptor{Type: ResourceSong, ID: "s1", AgencyID: "other"}

	for _, a := range Actions() {
		if !RoleAdministrator.Can(a, r, p) {
			t.Fatalf("administrator denied %s", a)
		}
	}
	if !RoleSeniorCollaborator.Can(ActionRollback, r, p) {
		t.Fatal("senior collaborator denied rollback")
	}
}

func TestNoneRoleDeniesEverything(t *testing.T) {
	p := &Principal{ID: "p1", Role: RoleNone, AgencyID: "agency1"}
	r := &ResourceDescriptor{Type: ResourceAgency, ID: "a1", AgencyID: "agency1"}

	for _, a := range Actions() {
		if RoleNone.Can(a, r, p) {
			t.Fatalf("role none allowed %s", a)
		}
	}

	result := evaluateRole(RoleNone, &CheckRequest{Principal: *p, Action: ActionEdit, Resource: *r})
	if result.Allowed {
		t.Fatal("expected deny")
	}
	if result.Decision != DecisionDenyNoRole {
		t.Fatalf("expected %s, got %s", DecisionDenyNoRole, result.Decision)
	}
}

func TestCollaboratorDraftOnly(t *testing.T) {
	p := &Principal{ID: "p1", Role: RoleCollaborator}
	r := &ResourceDescriptor{Type: ResourceTalent, ID: "t1"}

	for _, a := range []Action{ActionCreate, ActionEdit, ActionSubmit} {
		if !RoleCollaborator.Can(a, r, p) {
			t.Fatalf("collaborator denied %s", a)
		}
	}
	for _, a := range []Action{ActionApprove, ActionReject, ActionTranslate, ActionPublish, ActionRollback} {
		if RoleCollaborator.Can(a, r, p) {
			t.Fatalf("collaborator allowed %s", a)
		}
	}
}

func TestAgencyActorScopeIsAgencyEquality(t *testing.T) {
	p := &Principal{ID: "p1", Role: RoleAgencyActor, AgencyID: "agency1"}

	owned := &ResourceDescriptor{Type: ResourceGroup, ID: "g1", AgencyID: "agency1"}
	foreign := &ResourceDescriptor{Type: ResourceGroup, ID: "g2", AgencyID: "agency2"}
	unowned := &ResourceDescriptor{Type: ResourceGroup, ID: "g3"}

	if !RoleAgencyActor.Can(ActionApprove, owned, p) {
		t.Fatal("approve denied on owned group")
	}
	if RoleAgencyActor.Can(ActionApprove, foreign, p) {
		t.Fatal("approve allowed on foreign group")
	}
	// Missing resource agency fails closed.
	if RoleAgencyActor.Can(ActionApprove, unowned, p) {
		t.Fatal("approve allowed on unowned group")
	}
	// So does a principal with no agency at all.
	orphan := &Principal{ID: "p2", Role: RoleAgencyActor}
	if RoleAgencyActor.Can(ActionApprove, owned, orphan) {
		t.Fatal("approve allowed without a principal agency")
	}
	// Draft actions are never scope checked for agency actors.
	if !RoleAgencyActor.Can(ActionEdit, foreign, p) {
		t.Fatal("edit denied on foreign group")
	}

	// Same rule applies to agency records themselves.
	own := &ResourceDescriptor{Type: ResourceAgency, ID: "a1", AgencyID: "agency1"}
	other := &ResourceDescriptor{Type: ResourceAgency, ID: "a2", AgencyID: "agency2"}
	if !RoleAgencyActor.Can(ActionPublish, own, p) {
		t.Fatal("publish denied on own agency record")
	}
	if RoleAgencyActor.Can(ActionPublish, other, p) {
		t.Fatal("publish allowed on other agency record")
	}
}

func TestGroupActorScope(t *testing.T) {
	p := &Principal{ID: "p1", Role: RoleGroupActor, GroupIDs: NewIDSet("group1", "group2")}

	mine := &ResourceDescriptor{Type: ResourceGroup, ID: "g1", GroupIDs: NewIDSet("group2")}
	other := &ResourceDescriptor{Type: ResourceGroup, ID: "g2", GroupIDs: NewIDSet("group9")}
	agency := &ResourceDescriptor{Type: ResourceAgency, ID: "a1"}

	if !RoleGroupActor.Can(ActionApprove, mine, p) {
		t.Fatal("approve denied on own group")
	}
	if RoleGroupActor.Can(ActionApprove, other, p) {
		t.Fatal("approve allowed on unrelated group")
	}
	// Agency records: drafting is fine, approval never is.
	if !RoleGroupActor.Can(ActionSubmit, agency, p) {
		t.Fatal("submit denied on agency record")
	}
	if RoleGroupActor.Can(ActionApprove, agency, p) {
		t.Fatal("approve allowed on agency record")
	}
	if RoleGroupActor.Can(ActionRollback, agency, p) {
		t.Fatal("rollback allowed on agency record")
	}
}

func TestTalentActorDualScopeOnTalent(t *testing.T) {
	p := talentPrincipal()

	both := &ResourceDescriptor{
		Type: ResourceTalent, ID: "t1",
		GroupIDs: NewIDSet("group1"), TalentIDs: NewIDSet("talent1"),
	}
	talentOnly := &ResourceDescriptor{
		Type: ResourceTalent, ID: "t2",
		GroupIDs: NewIDSet("group9"), TalentIDs: NewIDSet("talent1"),
	}
	groupOnly := &ResourceDescriptor{
		Type: ResourceTalent, ID: "t3",
		GroupIDs: NewIDSet("group1"), TalentIDs: NewIDSet("talent9"),
	}

	if !RoleTalentActor.Can(ActionApprove, both, p) {
		t.Fatal("approve denied with both overlaps")
	}
	if RoleTalentActor.Can(ActionApprove, talentOnly, p) {
		t.Fatal("approve allowed with talent overlap only")
	}
	if RoleTalentActor.Can(ActionApprove, groupOnly, p) {
		t.Fatal("approve allowed with group overlap only")
	}
	// Talent actors scope plain edits too.
	if RoleTalentActor.Can(ActionEdit, groupOnly, p) {
		t.Fatal("edit allowed out of talent scope")
	}
	if !RoleTalentActor.Can(ActionCreate, groupOnly, p) {
		t.Fatal("create denied; drafting new records is unscoped")
	}
}

func TestTalentActorEitherScopeOnSong(t *testing.T) {
	p := talentPrincipal()

	byTalent := &ResourceDescriptor{Type: ResourceSong, ID: "s1", TalentIDs: NewIDSet("talent1")}
	byGroup := &ResourceDescriptor{Type: ResourceSong, ID: "s2", GroupIDs: NewIDSet("group1")}
	neither := &ResourceDescriptor{Type: ResourceSong, ID: "s3", GroupIDs: NewIDSet("group9"), TalentIDs: NewIDSet("talent9")}

	if !RoleTalentActor.Can(ActionPublish, byTalent, p) {
		t.Fatal("publish denied on talent-credited song")
	}
	if !RoleTalentActor.Can(ActionPublish, byGroup, p) {
		t.Fatal("publish denied on group-credited song")
	}
	if RoleTalentActor.Can(ActionPublish, neither, p) {
		t.Fatal("publish allowed on uncredited song")
	}
}

func TestEvaluateRoleDecisions(t *testing.T) {
	p := talentPrincipal()

	// Out-of-scope approval reports a scope denial, not a missing role.
	result := evaluateRole(RoleTalentActor, &CheckRequest{
		Principal: *p,
		Action:    ActionApprove,
		Resource:  ResourceDescriptor{Type: ResourceSong, ID: "s1", TalentIDs: NewIDSet("talent9")},
	})
	if result.Allowed {
		t.Fatal("expected deny")
	}
	if result.Decision != DecisionDenyScope {
		t.Fatalf("expected %s, got %s", DecisionDenyScope, result.Decision)
	}

	// An allowed check names the role as its match source.
	result = evaluateRole(RoleTalentActor, &CheckRequest{
		Principal: *p,
		Action:    ActionApprove,
		Resource:  ResourceDescriptor{Type: ResourceSong, ID: "s1", TalentIDs: NewIDSet("talent1")},
	})
	if !result.Allowed {
		t.Fatalf("expected allow, got %s: %s", result.Decision, result.Reason)
	}
	if len(result.MatchedBy) != 1 || result.MatchedBy[0].Source != "role" {
		t.Fatalf("unexpected match info: %+v", result.MatchedBy)
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		parsed, err := ParseRole(string(r))
		if err != nil {
			t.Fatalf("parse %s: %v", r, err)
		}
		if parsed != r {
			t.Fatalf("parse %s: got %s", r, parsed)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
