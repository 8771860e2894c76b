package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
	authctl "github.com/sparxmathsalternative/damnis/internal/pkg/auth/presentation/controller"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/dispatch"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/sink"
)

// SendMessageController handles outbound posts through the bridge (one controller per endpoint)
type SendMessageController struct {
	Dispatcher *dispatch.Dispatcher
	Resolver   *sink.Resolver
	Users      repository.UserRepository

	// Timeout bounds the blocking wait on the dispatcher; zero means the
	// dispatch default.
	Timeout time.Duration
}

func NewSendMessageController(d *dispatch.Dispatcher, r *sink.Resolver, users repository.UserRepository) *SendMessageController {
	return &SendMessageController{Dispatcher: d, Resolver: r, Users: users}
}

type sendMessageRequest struct {
	Content      string `json:"content" binding:"required"`
	Username     string `json:"username"`
	AvatarBase64 string `json:"avatar_base64"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID := c.Param("channelId")

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
			return
		}

		msg := platform.SinkMessage{
			Content:      req.Content,
			Username:     req.Username,
			AvatarBase64: req.AvatarBase64,
		}
		h.applyIdentityDefaults(c, &msg)

		timeout := h.Timeout
		if timeout == 0 {
			timeout = dispatch.DefaultTimeout
		}

		_, err := h.Dispatcher.Invoke(c.Request.Context(), func(ctx context.Context) (interface{}, error) {
			s, err := h.Resolver.Resolve(ctx, channelID)
			if err != nil {
				return nil, err
			}
			return nil, s.Post(ctx, msg)
		}, timeout)

		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"success": true})
		case errors.Is(err, dispatch.ErrTimeout):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "send timed out waiting for the platform"})
		case errors.Is(err, platform.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		case errors.Is(err, sink.ErrSinkUnavailable):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not obtain a webhook for this channel"})
		default:
			logger.Error("send failed", zap.String("channel", channelID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "send failed"})
		}
	}
}

// applyIdentityDefaults fills the impersonated identity from the caller's
// account when the request leaves it out.
func (h *SendMessageController) applyIdentityDefaults(c *gin.Context, msg *platform.SinkMessage) {
	sess := authctl.SessionFrom(c)
	if sess == nil {
		return
	}
	if msg.Username == "" {
		msg.Username = sess.Username
	}
	if msg.AvatarBase64 == "" {
		user, err := h.Users.FindUserByUsername(c.Request.Context(), sess.Username)
		if err == nil && user.AvatarBase64 != nil {
			msg.AvatarBase64 = *user.AvatarBase64
		}
	}
}
