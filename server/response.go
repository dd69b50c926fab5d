package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/audiodesk/errors"
)

// APIPrefix is the path prefix of the JSON API.
const APIPrefix = "/api/"

// WantsJSON reports whether the request is an API call or asks for JSON
// ahead of HTML.
func WantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, APIPrefix) {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, gin.MIMEJSON) && !strings.Contains(accept, gin.MIMEHTML)
}

// RespondWithError writes err as a JSON error body. AppErrors keep their
// status; anything else is a generic 500.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.ToAppError(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, appErr.ToResponse())
}

// RespondOK sends a 200 JSON response.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
