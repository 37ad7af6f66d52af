package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/pkg/jwt"
	"github.com/JoeSaf/Allika-sub000/pkg/redis"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// Context keys set by JWTAuth.
const (
	ContextUserID      = "user_id"
	ContextUserName    = "user_name"
	ContextTokenJTI    = "token_jti"
	ContextTokenExpiry = "token_expiry"
)

// JWTAuth validates the access token in "Authorization: Bearer <token>".
// rdb may be nil; revoked-token checks are then skipped.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortError(c, http.StatusUnauthorized, 10002, "Access token required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.AbortError(c, http.StatusUnauthorized, 10002, "Invalid authorization header")
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			response.AbortError(c, http.StatusUnauthorized, 10002, msg)
			return
		}
		if claims.TokenType != jwt.TokenTypeAccess {
			response.AbortError(c, http.StatusUnauthorized, 10002, "Invalid token type")
			return
		}

		if rdb != nil {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// redis down: accept the signature alone
				logger.Warn("token blacklist lookup failed", zap.Error(err))
			} else if revoked {
				response.AbortError(c, http.StatusUnauthorized, 10002, "Token has been revoked")
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserName, claims.Name)
		c.Set(ContextTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpiry, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}
