package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/service"
	appErrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// GrantHandler exposes grant and support endpoints.
type GrantHandler struct {
	grants *service.GrantService
}

// NewGrantHandler constructs GrantHandler.
func NewGrantHandler(grants *service.GrantService) *GrantHandler {
	return &GrantHandler{grants: grants}
}

func grantNoParam(c *gin.Context) (int, bool) {
	grantNo, err := strconv.Atoi(c.Param("grantNo"))
	if err != nil {
		response.Error(c, appErrors.OnField(appErrors.ErrValidation, "grant", "grant_no", "numeric", "grant number must be numeric"))
		return 0, false
	}
	return grantNo, true
}

// List godoc
// @Summary List grants
// @Tags Grants
// @Produce json
// @Param investigator query string false "Filter by principal investigator"
// @Success 200 {object} response.Envelope
// @Router /grants [get]
func (h *GrantHandler) List(c *gin.Context) {
	grants, err := h.grants.List(c.Request.Context(), c.Query("investigator"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grants, nil)
}

// Get godoc
// @Summary Get a grant with its support record
// @Tags Grants
// @Produce json
// @Param grantNo path int true "Grant number"
// @Success 200 {object} response.Envelope
// @Router /grants/{grantNo} [get]
func (h *GrantHandler) Get(c *gin.Context) {
	grantNo, ok := grantNoParam(c)
	if !ok {
		return
	}
	grant, support, err := h.grants.Get(c.Request.Context(), grantNo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"grant": grant, "support": support}, nil)
}

// Create godoc
// @Summary Create a grant
// @Tags Grants
// @Accept json
// @Produce json
// @Param payload body service.CreateGrantRequest true "Grant payload"
// @Success 201 {object} response.Envelope
// @Router /grants [post]
func (h *GrantHandler) Create(c *gin.Context) {
	var req service.CreateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grant, err := h.grants.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grant)
}

// SetSupport godoc
// @Summary Create or replace the support record of a grant
// @Tags Grants
// @Accept json
// @Produce json
// @Param grantNo path int true "Grant number"
// @Param payload body service.SupportRequest true "Support payload"
// @Success 200 {object} response.Envelope
// @Router /grants/{grantNo}/support [put]
func (h *GrantHandler) SetSupport(c *gin.Context) {
	grantNo, ok := grantNoParam(c)
	if !ok {
		return
	}
	var req service.SupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	support, err := h.grants.SetSupport(c.Request.Context(), grantNo, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, support, nil)
}

// Delete godoc
// @Summary Delete a grant
// @Tags Grants
// @Produce json
// @Param grantNo path int true "Grant number"
// @Param version query int true "Expected version"
// @Success 204
// @Router /grants/{grantNo} [delete]
func (h *GrantHandler) Delete(c *gin.Context) {
	grantNo, ok := grantNoParam(c)
	if !ok {
		return
	}
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.grants.Delete(c.Request.Context(), grantNo, version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
