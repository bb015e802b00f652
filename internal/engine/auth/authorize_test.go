package auth

import (
	"errors"
	"testing"
)

func TestAuthorizeOrg(t *testing.T) {
	scope := OrgScope("org_a", PlanFree)

	if err := AuthorizeOrg(scope, "org_a"); err != nil {
		t.Errorf("Same-org access rejected: %v", err)
	}
	if err := AuthorizeOrg(scope, "org_b"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Cross-org access = %v, want ErrForbidden", err)
	}
	if err := AuthorizeOrg(scope, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("Empty org id = %v, want ErrForbidden", err)
	}
}

func TestAuthorizeProject(t *testing.T) {
	orgScope := OrgScope("org_a", PlanPro)
	projScope := ProjectScope("org_a", "proj_1", PlanPro)

	cases := []struct {
		name         string
		scope        Scope
		orgID        string
		projectID    string
		allowOrgKeys bool
		wantErr      bool
	}{
		{"project key on own project", projScope, "org_a", "proj_1", false, false},
		{"project key on sibling project", projScope, "org_a", "proj_2", false, true},
		{"project key on sibling project even when org keys allowed", projScope, "org_a", "proj_2", true, true},
		{"org key when operation allows it", orgScope, "org_a", "proj_1", true, false},
		{"org key when operation requires project binding", orgScope, "org_a", "proj_1", false, true},
		{"cross-tenant with project key", projScope, "org_b", "proj_1", true, true},
		{"cross-tenant with org key", orgScope, "org_b", "proj_1", true, true},
		{"empty project id", orgScope, "org_a", "", true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := AuthorizeProject(tc.scope, tc.orgID, tc.projectID, tc.allowOrgKeys)
			if tc.wantErr {
				if !errors.Is(err, ErrForbidden) {
					t.Errorf("got %v, want ErrForbidden", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
