package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
)

// RegisterController handles the registration endpoint (one controller per endpoint)
type RegisterController struct {
	UC *usecase.RegisterUseCase
}

func NewRegisterController(uc *usecase.RegisterUseCase) *RegisterController {
	return &RegisterController{UC: uc}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *RegisterController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := h.UC.Execute(ctx, usecase.RegisterInput{
			Email:    req.Email,
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrEmailTaken), errors.Is(err, usecase.ErrUsernameTaken):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "registration temporarily unavailable"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
