package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/eventclient"
)

// DiscordStatusController handles the platform reachability probe (one controller per endpoint)
type DiscordStatusController struct {
	EC *eventclient.Client
}

func NewDiscordStatusController(ec *eventclient.Client) *DiscordStatusController {
	return &DiscordStatusController{EC: ec}
}

func (h *DiscordStatusController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "down"
		if h.EC.Ready() {
			status = "up"
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}
