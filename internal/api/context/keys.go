package context

type Key string

const (
	// Claims holds *session.Claims for console requests.
	Claims Key = "claims"
	// Scope holds the auth.Scope resolved from an API key.
	Scope Key = "scope"
	// Actor holds the non-secret actor identifier for audit facts: a user id
	// on the console surface, an API key lookup prefix on the public surface.
	Actor Key = "actor"
	// Params holds httprouter.Params.
	Params Key = "params"
)
