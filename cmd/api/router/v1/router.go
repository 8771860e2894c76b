package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authhttp "github.com/sparxmathsalternative/damnis/internal/pkg/auth/presentation/http"
	bridgehttp "github.com/sparxmathsalternative/damnis/internal/pkg/bridge/presentation/http"

	qport "github.com/sparxmathsalternative/damnis/internal/infrastructure/queue/port"
)

// RegisterRoutes mounts all API routes under /api, plus the index route.
func RegisterRoutes(r *gin.Engine, bridge bridgehttp.Deps, queue qport.Client) {
	r.GET("/", indexHandler)

	api := r.Group("/api")
	authhttp.RegisterRoutes(api, bridge.Users, bridge.Sessions, queue)
	bridgehttp.RegisterRoutes(api, bridge)
}

func indexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name": "damnis",
		"endpoints": []string{
			"GET /api/health",
			"GET /api/discord/status",
			"POST /api/auth/register",
			"POST /api/auth/verify",
			"POST /api/auth/login",
			"POST /api/auth/logout",
			"GET /api/guilds",
			"GET /api/guilds/:guildId/channels",
			"GET /api/guilds/:guildId/members/:userId",
			"GET /api/channels/:channelId/messages",
			"POST /api/channels/:channelId/send",
			"GET /api/user/me",
			"POST /api/user/quickcode",
			"POST /api/user/avatar",
		},
	})
}
