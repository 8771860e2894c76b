package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// AvatarController handles stored-avatar updates (one controller per endpoint)
type AvatarController struct {
	Repo repository.UserRepository
}

func NewAvatarController(repo repository.UserRepository) *AvatarController {
	return &AvatarController{Repo: repo}
}

type avatarRequest struct {
	AvatarBase64 string `json:"avatar_base64" binding:"required"`
}

func (h *AvatarController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req avatarRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := h.Repo.UpdateAvatar(c.Request.Context(), sess.Username, &req.AvatarBase64); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "avatar update temporarily unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
