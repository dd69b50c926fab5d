package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/audiodesk/errors"
)

// HandlerFunc is a Gin handler that reports failure by returning an error
// instead of writing the error response itself.
type HandlerFunc func(c *gin.Context) error

// ErrorPage renders the HTML error page for a failed page request.
type ErrorPage func(c *gin.Context, status int, err *apperrors.AppError)

// Handle adapts fn to gin. A returned error is attached to the context
// unchanged and the chain is aborted; ErrorBoundary writes the response.
func Handle(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}

// ErrorBoundary maps the last error attached to the request to a response
// when nothing has been written yet. API requests get the JSON error body;
// page requests get the HTML error page, or JSON when page is nil.
//
// The boundary does not log: handlers log their own failures and the
// request logger records the final status.
func ErrorBoundary(page ErrorPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		if page == nil || WantsJSON(c) {
			RespondWithError(c, err)
			return
		}
		appErr := apperrors.ToAppError(err)
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		page(c, status, appErr)
	}
}

func notFound(c *gin.Context) error {
	return apperrors.NotFound("page", c.Request.URL.Path)
}

func methodNotAllowed(c *gin.Context) error {
	return apperrors.New("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
}
