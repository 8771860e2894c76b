package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// ProfileController handles the current-user lookup (one controller per endpoint)
type ProfileController struct {
	Repo repository.UserRepository
}

func NewProfileController(repo repository.UserRepository) *ProfileController {
	return &ProfileController{Repo: repo}
}

func (h *ProfileController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := h.Repo.FindUserByUsername(c.Request.Context(), sess.Username)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile temporarily unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"username":      user.Username,
			"email":         user.Email,
			"quick_code":    user.QuickCode,
			"avatar_base64": user.AvatarBase64,
			"created_at":    user.CreatedAt,
		})
	}
}
