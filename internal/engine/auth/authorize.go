package auth

// Guard functions called at every data-access boundary. A handler must not
// carry a tenant check forward from earlier in the request; it re-checks the
// scope against the concrete resource ids at the point of access.
//
// Policy: cross-tenant access always returns ErrForbidden, never a not-found,
// uniformly across all operations.

// AuthorizeOrg checks that the scope may act within the given organization.
func AuthorizeOrg(s Scope, orgID string) error {
	if orgID == "" || s.OrganizationID() != orgID {
		return ErrForbidden
	}
	return nil
}

// AuthorizeProject checks that the scope may act on the given project.
// Organization-level keys pass only when the operation explicitly permits
// org-wide credentials (allowOrgKeys); project-level keys pass only for their
// own bound project.
func AuthorizeProject(s Scope, orgID, projectID string, allowOrgKeys bool) error {
	if err := AuthorizeOrg(s, orgID); err != nil {
		return err
	}
	if projectID == "" {
		return ErrForbidden
	}

	switch s.Level() {
	case LevelProject:
		bound, _ := s.ProjectID()
		if bound != projectID {
			return ErrForbidden
		}
		return nil
	case LevelOrganization:
		if !allowOrgKeys {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}
