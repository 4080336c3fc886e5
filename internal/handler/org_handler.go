package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/service"
	appErrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// OrgHandler exposes the college, department and course endpoints.
type OrgHandler struct {
	org *service.OrgService
}

// NewOrgHandler constructs OrgHandler.
func NewOrgHandler(org *service.OrgService) *OrgHandler {
	return &OrgHandler{org: org}
}

// ListColleges godoc
// @Summary List colleges
// @Tags Organisation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /colleges [get]
func (h *OrgHandler) ListColleges(c *gin.Context) {
	colleges, err := h.org.ListColleges(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, colleges, nil)
}

// GetCollege godoc
// @Summary Get a college
// @Tags Organisation
// @Produce json
// @Param name path string true "College name"
// @Success 200 {object} response.Envelope
// @Router /colleges/{name} [get]
func (h *OrgHandler) GetCollege(c *gin.Context) {
	college, err := h.org.GetCollege(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, college, nil)
}

// CreateCollege godoc
// @Summary Create a college
// @Tags Organisation
// @Accept json
// @Produce json
// @Param payload body service.CreateCollegeRequest true "College payload"
// @Success 201 {object} response.Envelope
// @Router /colleges [post]
func (h *OrgHandler) CreateCollege(c *gin.Context) {
	var req service.CreateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	college, err := h.org.CreateCollege(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, college)
}

// UpdateCollege godoc
// @Summary Update a college
// @Tags Organisation
// @Accept json
// @Produce json
// @Param name path string true "College name"
// @Param payload body service.UpdateCollegeRequest true "College payload"
// @Success 200 {object} response.Envelope
// @Router /colleges/{name} [put]
func (h *OrgHandler) UpdateCollege(c *gin.Context) {
	var req service.UpdateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	college, err := h.org.UpdateCollege(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, college, nil)
}

// DeleteCollege godoc
// @Summary Delete a college
// @Tags Organisation
// @Produce json
// @Param name path string true "College name"
// @Param version query int true "Expected version"
// @Success 204
// @Router /colleges/{name} [delete]
func (h *OrgHandler) DeleteCollege(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.org.DeleteCollege(c.Request.Context(), c.Param("name"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDepartments godoc
// @Summary List departments
// @Tags Organisation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *OrgHandler) ListDepartments(c *gin.Context) {
	departments, err := h.org.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// GetDepartment godoc
// @Summary Get a department
// @Tags Organisation
// @Produce json
// @Param name path string true "Department name"
// @Success 200 {object} response.Envelope
// @Router /departments/{name} [get]
func (h *OrgHandler) GetDepartment(c *gin.Context) {
	department, err := h.org.GetDepartment(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags Organisation
// @Accept json
// @Produce json
// @Param payload body service.CreateDepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Router /departments [post]
func (h *OrgHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	department, err := h.org.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, department)
}

// UpdateDepartment godoc
// @Summary Update a department
// @Tags Organisation
// @Accept json
// @Produce json
// @Param name path string true "Department name"
// @Param payload body service.UpdateDepartmentRequest true "Department payload"
// @Success 200 {object} response.Envelope
// @Router /departments/{name} [put]
func (h *OrgHandler) UpdateDepartment(c *gin.Context) {
	var req service.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	department, err := h.org.UpdateDepartment(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// DeleteDepartment godoc
// @Summary Delete a department
// @Tags Organisation
// @Produce json
// @Param name path string true "Department name"
// @Param version query int true "Expected version"
// @Success 204
// @Router /departments/{name} [delete]
func (h *OrgHandler) DeleteDepartment(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.org.DeleteDepartment(c.Request.Context(), c.Param("name"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCourses godoc
// @Summary List courses
// @Tags Organisation
// @Produce json
// @Param department query string false "Filter by department name"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *OrgHandler) ListCourses(c *gin.Context) {
	courses, err := h.org.ListCourses(c.Request.Context(), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// GetCourse godoc
// @Summary Get a course
// @Tags Organisation
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *OrgHandler) GetCourse(c *gin.Context) {
	course, err := h.org.GetCourse(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags Organisation
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *OrgHandler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.org.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags Organisation
// @Accept json
// @Produce json
// @Param code path string true "Course code"
// @Param payload body service.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{code} [put]
func (h *OrgHandler) UpdateCourse(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.org.UpdateCourse(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Tags Organisation
// @Produce json
// @Param code path string true "Course code"
// @Param version query int true "Expected version"
// @Success 204
// @Router /courses/{code} [delete]
func (h *OrgHandler) DeleteCourse(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.org.DeleteCourse(c.Request.Context(), c.Param("code"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
