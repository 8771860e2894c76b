package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
)

// LogoutController handles session deletion (one controller per endpoint)
type LogoutController struct {
	UC *usecase.LogoutUseCase
}

func NewLogoutController(uc *usecase.LogoutUseCase) *LogoutController {
	return &LogoutController{UC: uc}
}

func (h *LogoutController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if err := h.UC.Execute(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout temporarily unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
