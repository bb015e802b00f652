package auth

// PlanTier is the subscription tier snapshot attached to a resolved scope.
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanPro        PlanTier = "pro"
	PlanTeam       PlanTier = "team"
	PlanEnterprise PlanTier = "enterprise"
)

// AccessLevel is the breadth of a resolved scope.
type AccessLevel string

const (
	LevelOrganization AccessLevel = "organization"
	LevelProject      AccessLevel = "project"
)

// Scope is the immutable authorization result of a successful key
// verification. It is a tagged variant: the only way to build one is through
// OrgScope or ProjectScope, and the project id is only reachable through the
// ok-bool accessor, so a project-level scope always carries a project id and
// an organization-level scope never does.
type Scope struct {
	level     AccessLevel
	orgID     string
	projectID string
	plan      PlanTier
}

// OrgScope builds an organization-wide scope.
func OrgScope(orgID string, plan PlanTier) Scope {
	return Scope{level: LevelOrganization, orgID: orgID, plan: plan}
}

// ProjectScope builds a scope bound to a single project. projectID must be
// non-empty; the verifier only calls this for records that carry one.
func ProjectScope(orgID, projectID string, plan PlanTier) Scope {
	return Scope{level: LevelProject, orgID: orgID, projectID: projectID, plan: plan}
}

func (s Scope) Level() AccessLevel { return s.level }

func (s Scope) OrganizationID() string { return s.orgID }

// ProjectID returns the bound project id. ok is false for organization-level
// scopes.
func (s Scope) ProjectID() (string, bool) {
	if s.level != LevelProject {
		return "", false
	}
	return s.projectID, true
}

func (s Scope) Plan() PlanTier { return s.plan }
