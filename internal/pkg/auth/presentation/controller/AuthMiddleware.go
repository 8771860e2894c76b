package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
)

const sessionContextKey = "auth.session"

// RequireAuth accepts either an Authorization bearer token or a ?code=
// quick-code query parameter. Requests with neither, or with an invalid
// credential, are rejected with 401 before the handler runs.
func RequireAuth(authn *usecase.AuthenticateUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := usecase.AuthenticateInput{
			QuickCode: c.Query("code"),
		}
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			in.Token = strings.TrimPrefix(h, "Bearer ")
		}
		authenticate(c, authn, in)
	}
}

// RequireToken is RequireAuth restricted to bearer tokens, for endpoints
// that act on the session itself (logout, profile, quick-code rotation).
func RequireToken(authn *usecase.AuthenticateUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		authenticate(c, authn, usecase.AuthenticateInput{
			Token: strings.TrimPrefix(h, "Bearer "),
		})
	}
}

func authenticate(c *gin.Context, authn *usecase.AuthenticateUseCase, in usecase.AuthenticateInput) {
	sess, err := authn.Execute(c.Request.Context(), in)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication backend unavailable"})
		return
	}
	if sess == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Set(sessionContextKey, sess)
	c.Next()
}

// SessionFrom returns the session attached by the auth middleware, or nil
// when the route was not guarded.
func SessionFrom(c *gin.Context) *auth.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(*auth.Session); ok {
			return sess
		}
	}
	return nil
}
