package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/service"
	appErrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// DegreeHandler exposes degree endpoints.
type DegreeHandler struct {
	degrees *service.DegreeService
}

// NewDegreeHandler constructs DegreeHandler.
func NewDegreeHandler(degrees *service.DegreeService) *DegreeHandler {
	return &DegreeHandler{degrees: degrees}
}

// List godoc
// @Summary List degrees
// @Tags Degrees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /degrees [get]
func (h *DegreeHandler) List(c *gin.Context) {
	degrees, err := h.degrees.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, degrees, nil)
}

// Get godoc
// @Summary Get a degree
// @Tags Degrees
// @Produce json
// @Param id path string true "Degree ID"
// @Success 200 {object} response.Envelope
// @Router /degrees/{id} [get]
func (h *DegreeHandler) Get(c *gin.Context) {
	degree, err := h.degrees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, degree, nil)
}

// Create godoc
// @Summary Create a degree
// @Tags Degrees
// @Accept json
// @Produce json
// @Param payload body service.CreateDegreeRequest true "Degree payload"
// @Success 201 {object} response.Envelope
// @Router /degrees [post]
func (h *DegreeHandler) Create(c *gin.Context) {
	var req service.CreateDegreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	degree, err := h.degrees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, degree)
}

// Update godoc
// @Summary Update a degree
// @Tags Degrees
// @Accept json
// @Produce json
// @Param id path string true "Degree ID"
// @Param payload body service.UpdateDegreeRequest true "Degree payload"
// @Success 200 {object} response.Envelope
// @Router /degrees/{id} [put]
func (h *DegreeHandler) Update(c *gin.Context) {
	var req service.UpdateDegreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	degree, err := h.degrees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, degree, nil)
}

// Delete godoc
// @Summary Delete a degree
// @Tags Degrees
// @Produce json
// @Param id path string true "Degree ID"
// @Param version query int true "Expected version"
// @Success 204
// @Router /degrees/{id} [delete]
func (h *DegreeHandler) Delete(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.degrees.Delete(c.Request.Context(), c.Param("id"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
