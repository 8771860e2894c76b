package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

// MemberController handles the guild-member lookup (one controller per endpoint)
type MemberController struct {
	Client platform.Client
}

func NewMemberController(client platform.Client) *MemberController {
	return &MemberController{Client: client}
}

func (h *MemberController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Param("guildId")
		userID := c.Param("userId")

		m, err := h.Client.Member(c.Request.Context(), guildID, userID)
		if err != nil {
			if errors.Is(err, platform.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
				return
			}
			logger.Error("member lookup failed",
				zap.String("guild", guildID), zap.String("user", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "member lookup unavailable"})
			return
		}

		roles := make([]gin.H, 0, len(m.Roles))
		for _, r := range m.Roles {
			if r.Name == "@everyone" {
				continue
			}
			roles = append(roles, gin.H{"id": r.ID, "name": r.Name, "color": r.Color})
		}

		c.JSON(http.StatusOK, gin.H{
			"id":           m.ID,
			"username":     m.Username,
			"display_name": m.DisplayName,
			"avatar_url":   m.AvatarURL,
			"bot":          m.Bot,
			"roles":        roles,
		})
	}
}
