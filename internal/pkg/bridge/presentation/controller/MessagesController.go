package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/cache"
)

const (
	defaultMessageLimit = 10
	maxMessageLimit     = 50
)

// MessagesController handles cached-message reads (one controller per endpoint)
type MessagesController struct {
	Cache *cache.MessageCache
}

func NewMessagesController(mc *cache.MessageCache) *MessagesController {
	return &MessagesController{Cache: mc}
}

func (h *MessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID := c.Param("channelId")

		limit := defaultMessageLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}
		if limit > maxMessageLimit {
			limit = maxMessageLimit
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": h.Cache.ReadLast(channelID, limit),
		})
	}
}
