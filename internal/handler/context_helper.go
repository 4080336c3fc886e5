package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/middleware"
	"github.com/iagbolahan/college-registry-api/internal/models"
	appErrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

func actorFromContext(c *gin.Context) *models.ActorClaims {
	value, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.ActorClaims)
	if !ok {
		return nil
	}
	return claims
}

// versionParam reads the mandatory optimistic-lock version from the query
// string. It writes the error response itself when the value is absent or
// malformed.
func versionParam(c *gin.Context) (int, bool) {
	raw := c.Query("version")
	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		response.Error(c, appErrors.OnField(appErrors.ErrValidation, "", "version", "required", "version query parameter is required"))
		return 0, false
	}
	return version, true
}
