package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

// ChannelsController handles the per-guild channel listing (one controller per endpoint)
type ChannelsController struct {
	Client platform.Client
}

func NewChannelsController(client platform.Client) *ChannelsController {
	return &ChannelsController{Client: client}
}

func (h *ChannelsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Param("guildId")

		channels, err := h.Client.Channels(c.Request.Context(), guildID)
		if err != nil {
			if errors.Is(err, platform.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
				return
			}
			logger.Error("list channels failed", zap.String("guild", guildID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "channel listing unavailable"})
			return
		}

		// Only text channels are bridgeable.
		out := make([]gin.H, 0, len(channels))
		for _, ch := range channels {
			if ch.Type != "text" {
				continue
			}
			out = append(out, gin.H{
				"id":       ch.ID,
				"name":     ch.Name,
				"type":     ch.Type,
				"category": ch.Category,
			})
		}
		c.JSON(http.StatusOK, gin.H{"channels": out})
	}
}
