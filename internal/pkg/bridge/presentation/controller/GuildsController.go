package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

// GuildsController handles the guild listing (one controller per endpoint)
type GuildsController struct {
	Client platform.Client
}

func NewGuildsController(client platform.Client) *GuildsController {
	return &GuildsController{Client: client}
}

func (h *GuildsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		guilds, err := h.Client.Guilds(c.Request.Context())
		if err != nil {
			logger.Error("list guilds failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "guild listing unavailable"})
			return
		}

		out := make([]gin.H, 0, len(guilds))
		for _, g := range guilds {
			out = append(out, gin.H{
				"id":           g.ID,
				"name":         g.Name,
				"icon_url":     g.IconURL,
				"member_count": g.MemberCount,
			})
		}
		c.JSON(http.StatusOK, gin.H{"guilds": out})
	}
}
