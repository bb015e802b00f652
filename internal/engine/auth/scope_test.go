package auth

import "testing"

func TestScopeVariants(t *testing.T) {
	org := OrgScope("org_1", PlanPro)
	if org.Level() != LevelOrganization {
		t.Errorf("Expected organization level, got %s", org.Level())
	}
	if org.OrganizationID() != "org_1" {
		t.Errorf("Expected org_1, got %s", org.OrganizationID())
	}
	if _, ok := org.ProjectID(); ok {
		t.Error("Organization scope must not expose a project id")
	}
	if org.Plan() != PlanPro {
		t.Errorf("Expected pro plan, got %s", org.Plan())
	}

	proj := ProjectScope("org_1", "proj_9", PlanTeam)
	if proj.Level() != LevelProject {
		t.Errorf("Expected project level, got %s", proj.Level())
	}
	pid, ok := proj.ProjectID()
	if !ok || pid != "proj_9" {
		t.Errorf("Expected proj_9, got %q ok=%v", pid, ok)
	}
}
