package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/auth"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ActorKey is the Gin context key holding the authenticated shared.Actor
const ActorKey = "actor"

// TokenVerifier turns a bearer token into the caller it was issued to
type TokenVerifier interface {
	Verify(token string) (shared.Actor, error)
}

// Auth rejects requests without a valid bearer token and stores the caller
// under ActorKey. The request logger is enriched with tenant and user.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		actor, err := verifier.Verify(token)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token has expired"
			}
			abortUnauthorized(c, message)
			return
		}

		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// ActorFrom returns the caller stored by Auth
func ActorFrom(c *gin.Context) (shared.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return shared.Actor{}, false
	}
	actor, ok := v.(shared.Actor)
	return actor, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, logger.GetRequestID(c.Request.Context()),
	))
}
