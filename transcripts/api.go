package transcripts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/auth"
	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/server"
)

// uploadField is the repeated multipart field carrying files.
const uploadField = "file"

// API serves the JSON endpoints used by the transcripts page script.
type API struct {
	svc *Service
}

// NewAPI creates the API handlers on svc.
func NewAPI(svc *Service) *API {
	return &API{svc: svc}
}

// ListTranscripts handles GET /api/transcripts.
func (a *API) ListTranscripts(c *gin.Context) error {
	ctx := c.Request.Context()
	docs, err := a.svc.List(ctx, auth.UserID(ctx))
	if err != nil {
		return err
	}
	server.RespondOK(c, gin.H{"documents": docs})
	return nil
}

// ListChunks handles GET /api/transcripts/:id/chunks.
func (a *API) ListChunks(c *gin.Context) error {
	ctx := c.Request.Context()
	chunks, err := a.svc.Chunks(ctx, auth.UserID(ctx), c.Param("id"))
	if err != nil {
		return err
	}
	server.RespondOK(c, gin.H{"chunks": chunks})
	return nil
}

// Upload handles POST /api/documents/upload. It answers 400 with the
// per-file errors when nothing was accepted.
func (a *API) Upload(c *gin.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.FileTooLarge("upload", tooLarge.Limit)
		}
		return apperrors.InvalidInput(uploadField, "expected a multipart form")
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		return apperrors.InvalidInput(uploadField, "no files were uploaded")
	}

	ctx := c.Request.Context()
	result, err := a.svc.Upload(ctx, auth.UserID(ctx), files)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if !result.Accepted() {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
	return nil
}
