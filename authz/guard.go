package authz

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/auth"
	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/server"
	"github.com/kbukum/audiodesk/settings"
)

// PermissionWorkspaceUse is the permission RequireUser checks.
const PermissionWorkspaceUse = "workspace:use"

// Guard checks one precondition of a request. Check returns false after it
// has answered the request (redirect, or an error attached for the boundary).
type Guard interface {
	Check(c *gin.Context) bool
}

// GuardFunc is an adapter to use ordinary functions as Guard.
type GuardFunc func(c *gin.Context) bool

// Check implements Guard.
func (f GuardFunc) Check(c *gin.Context) bool { return f(c) }

// Chain runs guards in order and aborts on the first that fails.
func Chain(guards ...Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, g := range guards {
			if !g.Check(c) {
				c.Abort()
				return
			}
		}
	}
}

// DefaultRolePermissions is the role table used when none is configured.
func DefaultRolePermissions() map[string][]string {
	return map[string][]string{
		auth.RoleAdmin: {"*:*"},
		auth.RoleUser:  {"workspace:*", "transcripts:*"},
	}
}

// RequireLogin passes signed-in requests. Page requests without a session
// are redirected to loginPath with the original URI in "next"; API requests
// fail with Unauthorized.
func RequireLogin(loginPath string) Guard {
	return GuardFunc(func(c *gin.Context) bool {
		if _, ok := auth.SessionFrom(c.Request.Context()); ok {
			return true
		}
		if server.WantsJSON(c) {
			_ = c.Error(apperrors.Unauthorized(""))
			return false
		}
		target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		return false
	})
}

// RequirePermission passes when any role of the session holds permission.
func RequirePermission(checker Checker, permission string) Guard {
	return GuardFunc(func(c *gin.Context) bool {
		claims, ok := auth.SessionFrom(c.Request.Context())
		if !ok {
			_ = c.Error(apperrors.Unauthorized(""))
			return false
		}
		for _, role := range claims.Roles {
			if checker.HasPermission(role, permission) {
				return true
			}
		}
		_ = c.Error(apperrors.Forbidden("").WithDetail("permission", permission))
		return false
	})
}

// RequireUser passes sessions whose roles may use the workspace.
func RequireUser(checker Checker) Guard {
	return RequirePermission(checker, PermissionWorkspaceUse)
}

// RequireFeature passes when the settings gate key is on. A disabled gate
// fails with FeatureDisabled; a settings read error is passed on unchanged.
func RequireFeature(store settings.Store, key string) Guard {
	return GuardFunc(func(c *gin.Context) bool {
		s, err := store.Get(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return false
		}
		if !s.Enabled(key) {
			_ = c.Error(apperrors.FeatureDisabled(key))
			return false
		}
		return true
	})
}
