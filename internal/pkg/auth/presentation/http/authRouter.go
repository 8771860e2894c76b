package http

import (
	"github.com/gin-gonic/gin"

	qport "github.com/sparxmathsalternative/damnis/internal/infrastructure/queue/port"
	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/presentation/controller"
)

// RegisterRoutes registers account and session endpoints under the given
// router group. It constructs per-endpoint controllers and binds them
// directly to routes.
func RegisterRoutes(g *gin.RouterGroup, repo repository.UserRepository, sessions repository.SessionStore, queue qport.Client) {
	registerCtl := controller.NewRegisterController(usecase.NewRegisterUseCase(repo, queue))
	verifyCtl := controller.NewVerifyController(usecase.NewVerifyUseCase(repo, sessions))
	loginCtl := controller.NewLoginController(usecase.NewLoginUseCase(repo, sessions))
	logoutCtl := controller.NewLogoutController(usecase.NewLogoutUseCase(sessions))
	profileCtl := controller.NewProfileController(repo)
	quickCodeCtl := controller.NewQuickCodeController(usecase.NewRegenerateQuickCodeUseCase(repo))
	avatarCtl := controller.NewAvatarController(repo)

	requireToken := controller.RequireToken(usecase.NewAuthenticateUseCase(repo, sessions))

	// POST /api/auth/register -> start a registration, mail a code
	g.POST("/auth/register", registerCtl.Handle())

	// POST /api/auth/verify -> redeem the code, open a session
	g.POST("/auth/verify", verifyCtl.Handle())

	// POST /api/auth/login -> password login
	g.POST("/auth/login", loginCtl.Handle())

	// POST /api/auth/logout -> delete the session
	g.POST("/auth/logout", requireToken, logoutCtl.Handle())

	// GET /api/user/me -> current profile, quick code included
	g.GET("/user/me", requireToken, profileCtl.Handle())

	// POST /api/user/quickcode -> rotate the quick code
	g.POST("/user/quickcode", requireToken, quickCodeCtl.Handle())

	// POST /api/user/avatar -> replace the stored avatar
	g.POST("/user/avatar", requireToken, avatarCtl.Handle())
}
