package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/repository"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// AuditHandler exposes the mutation audit trail.
type AuditHandler struct {
	audits *repository.AuditRepository
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audits *repository.AuditRepository) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List godoc
// @Summary List audit entries for a resource
// @Tags Audit
// @Produce json
// @Param resource path string true "Resource kind (person, session, ...)"
// @Param id path string true "Resource identifier"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /audit/{resource}/{id} [get]
func (h *AuditHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.audits.ListByResource(c.Request.Context(), c.Param("resource"), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
