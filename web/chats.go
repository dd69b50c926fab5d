package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/flash"
	"github.com/kbukum/audiodesk/logger"
)

// ChatsView is the data of chats.html.
type ChatsView struct {
	Notices []flash.Notice
}

// ChatsPage serves GET /chats, the landing page that shows pending flash
// notices once.
type ChatsPage struct {
	renderer Renderer
	flashes  flash.Store
	log      *logger.Logger
}

// NewChatsPage creates the chats page handler.
func NewChatsPage(renderer Renderer, flashes flash.Store, log *logger.Logger) *ChatsPage {
	return &ChatsPage{renderer: renderer, flashes: flashes, log: log.WithComponent("chats")}
}

// Serve renders the page. Notices that cannot be read are logged and
// skipped.
func (p *ChatsPage) Serve(c *gin.Context) error {
	notices, err := p.flashes.Pop(c)
	if err != nil {
		p.log.WithContext(c.Request.Context()).Warn("Reading flash notices failed", logger.Fields(logger.FieldError, err.Error()))
	}
	return p.renderer.Render(c, http.StatusOK, "chats.html", ChatsView{Notices: notices})
}
