// Package flash carries one-time notices across a redirect. A notice added
// while handling one request is shown by the next page that pops it.
package flash

import (
	"github.com/gin-gonic/gin"
)

// Notice categories understood by the templates.
const (
	CategoryInfo    = "info"
	CategorySuccess = "success"
	CategoryWarning = "warning"
	CategoryDanger  = "danger"
)

// Notice is a user-visible message.
type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Warning returns a warning notice.
func Warning(msg string) Notice { return Notice{Category: CategoryWarning, Message: msg} }

// Store persists notices between requests.
type Store interface {
	// Add queues n for the client of c.
	Add(c *gin.Context, n Notice) error
	// Pop returns and clears the client's queued notices.
	Pop(c *gin.Context) ([]Notice, error)
}

// pending keeps notices added during the current request so repeated Adds
// accumulate before the response is written.
const pendingKey = "flash.pending"

func pending(c *gin.Context) []Notice {
	if v, ok := c.Get(pendingKey); ok {
		if ns, ok := v.([]Notice); ok {
			return ns
		}
	}
	return nil
}
