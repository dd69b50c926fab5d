package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/auth"
	"github.com/kbukum/audiodesk/logger"
)

// SessionResolver resolves the signed-in user of a request.
// *auth.SessionResolver satisfies it.
type SessionResolver interface {
	Resolve(req *http.Request) (*auth.SessionClaims, error)
}

// Session resolves the request's session and stores it in the request
// context. Requests without a valid session continue anonymously; the
// authorization guards decide what an anonymous request may reach.
func Session(resolver SessionResolver, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := resolver.Resolve(c.Request)
		if err != nil {
			if !stderrors.Is(err, auth.ErrNoSession) {
				log.WithContext(c.Request.Context()).Debug("Ignoring invalid session", logger.Fields(
					logger.FieldError, err.Error(),
					"path", c.Request.URL.Path,
				))
			}
			c.Next()
			return
		}

		ctx := auth.WithSession(c.Request.Context(), claims)
		ctx = logger.ContextWithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(logger.FieldUserID, claims.UserID)
		c.Next()
	}
}
