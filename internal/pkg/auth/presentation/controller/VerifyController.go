package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
)

// VerifyController handles the code-redemption endpoint (one controller per endpoint)
type VerifyController struct {
	UC *usecase.VerifyUseCase
}

func NewVerifyController(uc *usecase.VerifyUseCase) *VerifyController {
	return &VerifyController{UC: uc}
}

type verifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func (h *VerifyController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		sess, err := h.UC.Execute(ctx, usecase.VerifyInput{Email: req.Email, Code: req.Code})
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidOrExpiredCode) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification temporarily unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"token":    sess.Token,
			"username": sess.Username,
		})
	}
}
