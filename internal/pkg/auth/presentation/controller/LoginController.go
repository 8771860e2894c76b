package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
)

// LoginController handles the password-login endpoint (one controller per endpoint)
type LoginController struct {
	UC *usecase.LoginUseCase
}

func NewLoginController(uc *usecase.LoginUseCase) *LoginController {
	return &LoginController{UC: uc}
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

func (h *LoginController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		sess, err := h.UC.Execute(ctx, usecase.LoginInput{
			UsernameOrEmail: req.UsernameOrEmail,
			Password:        req.Password,
		})
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login temporarily unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"token":    sess.Token,
			"username": sess.Username,
		})
	}
}
