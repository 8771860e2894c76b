package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
	authctl "github.com/sparxmathsalternative/damnis/internal/pkg/auth/presentation/controller"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/cache"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/dispatch"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/eventclient"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/presentation/controller"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/sink"
)

// Deps bundles everything the bridge endpoints consume.
type Deps struct {
	EventClient *eventclient.Client
	Cache       *cache.MessageCache
	Client      platform.Client
	Dispatcher  *dispatch.Dispatcher
	Resolver    *sink.Resolver
	Users       repository.UserRepository
	Sessions    repository.SessionStore
}

// RegisterRoutes registers bridge HTTP endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	healthCtl := controller.NewHealthController(d.EventClient, d.Cache)
	statusCtl := controller.NewDiscordStatusController(d.EventClient)
	guildsCtl := controller.NewGuildsController(d.Client)
	channelsCtl := controller.NewChannelsController(d.Client)
	memberCtl := controller.NewMemberController(d.Client)
	messagesCtl := controller.NewMessagesController(d.Cache)
	sendCtl := controller.NewSendMessageController(d.Dispatcher, d.Resolver, d.Users)

	requireAuth := authctl.RequireAuth(usecase.NewAuthenticateUseCase(d.Users, d.Sessions))

	// GET /api/health -> service and gateway health report
	g.GET("/health", healthCtl.Handle())

	// GET /api/discord/status -> platform reachability
	g.GET("/discord/status", requireAuth, statusCtl.Handle())

	// GET /api/guilds -> guilds the bridge account belongs to
	g.GET("/guilds", requireAuth, guildsCtl.Handle())

	// GET /api/guilds/:guildId/channels -> text channels of a guild
	g.GET("/guilds/:guildId/channels", requireAuth, channelsCtl.Handle())

	// GET /api/guilds/:guildId/members/:userId -> member profile with roles
	g.GET("/guilds/:guildId/members/:userId", requireAuth, memberCtl.Handle())

	// GET /api/channels/:channelId/messages -> recent cached messages
	g.GET("/channels/:channelId/messages", requireAuth, messagesCtl.Handle())

	// POST /api/channels/:channelId/send -> post through the channel sink
	g.POST("/channels/:channelId/send", requireAuth, sendCtl.Handle())
}
