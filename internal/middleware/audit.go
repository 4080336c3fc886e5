package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/internal/repository"
)

// Audit records an audit entry after each successful mutation. The resource
// identifier is taken from the named route parameter when present.
func Audit(repo *repository.AuditRepository, action, resource, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var actorID *string
		if claims, ok := c.Get(ContextActorKey); ok {
			actor := claims.(*models.ActorClaims)
			actorID = &actor.ActorID
		}

		var resourceID *string
		if idParam != "" {
			if id := c.Param(idParam); id != "" {
				resourceID = &id
			}
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.Record(c.Request.Context(), &models.AuditLog{
			ActorID:    actorID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			Payload:    payload,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
