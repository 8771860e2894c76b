package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// QuickCodeController handles quick-code rotation (one controller per endpoint)
type QuickCodeController struct {
	UC *usecase.RegenerateQuickCodeUseCase
}

func NewQuickCodeController(uc *usecase.RegenerateQuickCodeUseCase) *QuickCodeController {
	return &QuickCodeController{UC: uc}
}

func (h *QuickCodeController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		code, err := h.UC.Execute(c.Request.Context(), sess.Username)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "quick code rotation temporarily unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "quick_code": code})
	}
}
