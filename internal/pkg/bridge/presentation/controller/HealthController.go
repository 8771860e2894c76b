package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/cache"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/eventclient"
)

// HealthController handles the service health report (one controller per endpoint)
type HealthController struct {
	EC    *eventclient.Client
	Cache *cache.MessageCache
}

func NewHealthController(ec *eventclient.Client, mc *cache.MessageCache) *HealthController {
	return &HealthController{EC: ec, Cache: mc}
}

func (h *HealthController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := h.EC.State()
		self := h.EC.Self()

		// StartedAt is zero until the first ready event.
		uptime := 0
		if started := h.EC.StartedAt(); !started.IsZero() {
			uptime = int(time.Since(started).Seconds())
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"uptime_seconds": uptime,
			"bot": gin.H{
				"ready":      state == eventclient.StateReady,
				"connected":  state == eventclient.StateReady || state == eventclient.StateConnecting,
				"latency_ms": h.EC.Latency().Milliseconds(),
				"user": gin.H{
					"id":   self.ID,
					"name": self.Username,
				},
			},
			"guilds":          h.EC.GuildCount(),
			"cached_messages": h.Cache.Total(),
		})
	}
}
