package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/service"
	appErrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// RoleHandler exposes role assignment endpoints for lecturers, students,
// graduates and researchers.
type RoleHandler struct {
	roles *service.RoleService
}

// NewRoleHandler constructs RoleHandler.
func NewRoleHandler(roles *service.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// AssignLecturer godoc
// @Summary Assign the lecturer role to a person
// @Tags Roles
// @Accept json
// @Produce json
// @Param regNo path string true "Registration number"
// @Param payload body service.AssignLecturerRequest true "Lecturer payload"
// @Success 201 {object} response.Envelope
// @Router /persons/{regNo}/lecturer [post]
func (h *RoleHandler) AssignLecturer(c *gin.Context) {
	var req service.AssignLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lecturer, err := h.roles.AssignLecturer(c.Request.Context(), c.Param("regNo"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lecturer)
}

// UpdateLecturer godoc
// @Summary Update a lecturer record
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Lecturer ID"
// @Param payload body service.UpdateLecturerRequest true "Lecturer payload"
// @Success 200 {object} response.Envelope
// @Router /lecturers/{id} [put]
func (h *RoleHandler) UpdateLecturer(c *gin.Context) {
	var req service.UpdateLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lecturer, err := h.roles.UpdateLecturer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturer, nil)
}

// RemoveLecturer godoc
// @Summary Remove the lecturer role
// @Tags Roles
// @Produce json
// @Param id path string true "Lecturer ID"
// @Param version query int true "Expected version"
// @Success 204
// @Router /lecturers/{id} [delete]
func (h *RoleHandler) RemoveLecturer(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.roles.RemoveLecturer(c.Request.Context(), c.Param("id"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignStudent godoc
// @Summary Assign the student role to a person
// @Tags Roles
// @Accept json
// @Produce json
// @Param regNo path string true "Registration number"
// @Param payload body service.AssignStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /persons/{regNo}/student [post]
func (h *RoleHandler) AssignStudent(c *gin.Context) {
	var req service.AssignStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.roles.AssignStudent(c.Request.Context(), c.Param("regNo"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// UpdateStudent godoc
// @Summary Update a student record
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Student record ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *RoleHandler) UpdateStudent(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.roles.UpdateStudent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// RemoveStudent godoc
// @Summary Remove the student role
// @Tags Roles
// @Produce json
// @Param id path string true "Student record ID"
// @Param version query int true "Expected version"
// @Success 204
// @Router /students/{id} [delete]
func (h *RoleHandler) RemoveStudent(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.roles.RemoveStudent(c.Request.Context(), c.Param("id"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignGraduate godoc
// @Summary Promote a student to graduate standing
// @Tags Roles
// @Accept json
// @Produce json
// @Param regNo path string true "Registration number"
// @Param payload body service.AssignGraduateRequest true "Graduate payload"
// @Success 201 {object} response.Envelope
// @Router /persons/{regNo}/graduate [post]
func (h *RoleHandler) AssignGraduate(c *gin.Context) {
	var req service.AssignGraduateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	graduate, err := h.roles.AssignGraduate(c.Request.Context(), c.Param("regNo"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, graduate)
}

// UpdateGraduate godoc
// @Summary Update a graduate record
// @Tags Roles
// @Accept json
// @Produce json
// @Param regNo path string true "Registration number"
// @Param payload body service.UpdateGraduateRequest true "Graduate payload"
// @Success 200 {object} response.Envelope
// @Router /persons/{regNo}/graduate [put]
func (h *RoleHandler) UpdateGraduate(c *gin.Context) {
	var req service.UpdateGraduateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	graduate, err := h.roles.UpdateGraduate(c.Request.Context(), c.Param("regNo"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, graduate, nil)
}

// AssignResearcher godoc
// @Summary Assign the researcher role to a person
// @Tags Roles
// @Produce json
// @Param regNo path string true "Registration number"
// @Success 201 {object} response.Envelope
// @Router /persons/{regNo}/researcher [post]
func (h *RoleHandler) AssignResearcher(c *gin.Context) {
	researcher, err := h.roles.AssignResearcher(c.Request.Context(), c.Param("regNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, researcher)
}

// RemoveResearcher godoc
// @Summary Remove the researcher role
// @Tags Roles
// @Produce json
// @Param id path string true "Researcher ID"
// @Param version query int true "Expected version"
// @Success 204
// @Router /researchers/{id} [delete]
func (h *RoleHandler) RemoveResearcher(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.roles.RemoveResearcher(c.Request.Context(), c.Param("id"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
