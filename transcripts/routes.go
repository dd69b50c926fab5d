package transcripts

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/authz"
	"github.com/kbukum/audiodesk/server"
	"github.com/kbukum/audiodesk/server/middleware"
	"github.com/kbukum/audiodesk/settings"
)

// Routes holds what RegisterRoutes needs to mount the transcripts feature.
type Routes struct {
	Page      *PageHandler
	API       *API
	Settings  settings.Store
	Checker   authz.Checker
	LoginPath string
	// UploadRateLimit caps uploads per user per minute; 0 disables it.
	UploadRateLimit int
}

// PagePath is the route of the transcripts page.
const PagePath = "/transcripts"

// RegisterRoutes mounts the page and its JSON API on r. The page checks
// login, role and workspace; the API additionally requires audio support.
func RegisterRoutes(r gin.IRouter, rt Routes) {
	guards := authz.Chain(
		authz.RequireLogin(rt.LoginPath),
		authz.RequireUser(rt.Checker),
		authz.RequireFeature(rt.Settings, settings.KeyEnableUserWorkspace),
	)
	r.GET(PagePath, guards, server.Handle(rt.Page.Serve))

	api := r.Group("/api", guards, authz.Chain(
		authz.RequireFeature(rt.Settings, settings.KeyEnableAudioFileSupport),
	))
	api.GET("/transcripts", server.Handle(rt.API.ListTranscripts))
	api.GET("/transcripts/:id/chunks", server.Handle(rt.API.ListChunks))

	upload := []gin.HandlerFunc{}
	if rt.UploadRateLimit > 0 {
		upload = append(upload, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: rt.UploadRateLimit,
			KeyFunc:           middleware.UserBasedKey,
		}))
	}
	upload = append(upload, server.Handle(rt.API.Upload))
	api.POST("/documents/upload", upload...)
}
