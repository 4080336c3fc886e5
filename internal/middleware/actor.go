package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// ContextActorKey is the gin context key storing the verified actor claims.
const ContextActorKey = "currentActor"

func parseActorToken(token, secret string) (*models.ActorClaims, error) {
	claims := &models.ActorClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Clone(apperrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, "invalid actor token")
	}
	return claims, nil
}

// Actor requires a valid actor token on mutating routes so every write can be
// attributed in the audit trail. The registry verifies the signature only;
// identity management lives upstream.
func Actor(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, apperrors.Clone(apperrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := parseActorToken(parts[1], secret)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextActorKey, claims)
		c.Next()
	}
}

// OptionalActor attaches actor claims when present but never blocks.
func OptionalActor(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		if claims, err := parseActorToken(parts[1], secret); err == nil {
			c.Set(ContextActorKey, claims)
		}
		c.Next()
	}
}
