// Package authz decides what a signed-in user may reach.
//
// Checker maps a subject (a role name) to wildcard permission patterns
// ("transcripts:*" matches "transcripts:read"). Guards built on top of it
// run as an ordered chain in front of a route; each guard either passes or
// answers the request itself.
//
// Usage:
//
//	checker := authz.NewMapChecker(authz.DefaultRolePermissions())
//	r.GET("/transcripts", authz.Chain(
//	    authz.RequireLogin("/login"),
//	    authz.RequireUser(checker),
//	    authz.RequireFeature(store, settings.KeyEnableUserWorkspace),
//	), handler)
package authz
