package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/internal/rules"
	"github.com/iagbolahan/college-registry-api/internal/service"
	appErrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// SessionHandler exposes course offering session endpoints, including the
// roster and archive lifecycle and student registrations.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type registerRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// List godoc
// @Summary List sessions with their temporal classification
// @Tags Sessions
// @Produce json
// @Param courseCode query string false "Filter by course code"
// @Param teacherId query string false "Filter by teaching researcher"
// @Param year query int false "Filter by year"
// @Param quarter query string false "Filter by quarter (Q1..Q4)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.SessionFilter
	filter.CourseCode = c.Query("courseCode")
	filter.TeacherID = c.Query("teacherId")
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	filter.Quarter = models.Quarter(strings.ToUpper(c.Query("quarter")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	sessions, pagination, err := h.sessions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Get godoc
// @Summary Get a session with its temporal classification
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Status godoc
// @Summary Classify a session against an explicit reference clock
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param year query int false "Reference year (defaults to server clock)"
// @Param month query int false "Reference month 1..12"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/status [get]
func (h *SessionHandler) Status(c *gin.Context) {
	var clock *rules.ReferenceClock
	if c.Query("year") != "" || c.Query("month") != "" {
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			response.Error(c, appErrors.OnField(appErrors.ErrValidation, "clock", "year", "numeric", "reference year must be numeric"))
			return
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil {
			response.Error(c, appErrors.OnField(appErrors.ErrValidation, "clock", "month", "numeric", "reference month must be numeric"))
			return
		}
		clock = &rules.ReferenceClock{Year: year, Month: month}
	}
	view, err := h.sessions.Status(c.Request.Context(), c.Param("id"), clock)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Create godoc
// @Summary Create a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.UpdateSessionRequest true "Session payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req service.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.sessions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Delete a session and its dependent records
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param version query int true "Expected version"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Promote godoc
// @Summary Promote a session onto the current roster
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/promote [post]
func (h *SessionHandler) Promote(c *gin.Context) {
	entry, err := h.sessions.PromoteToCurrent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Archive godoc
// @Summary Archive a historical session with a final grade
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.ArchiveSessionRequest true "Archive payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/archive [post]
func (h *SessionHandler) Archive(c *gin.Context) {
	var req service.ArchiveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	archive, err := h.sessions.Archive(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, archive, nil)
}

// Roster godoc
// @Summary List registrations of a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/registrations [get]
func (h *SessionHandler) Roster(c *gin.Context) {
	registrations, err := h.sessions.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, nil)
}

// Register godoc
// @Summary Register a student for a session on the current roster
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body registerRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /sessions/{id}/registrations [post]
func (h *SessionHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.sessions.Register(c.Request.Context(), req.StudentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// Unregister godoc
// @Summary Drop a student from a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student record ID"
// @Success 204
// @Router /sessions/{id}/registrations/{studentId} [delete]
func (h *SessionHandler) Unregister(c *gin.Context) {
	if err := h.sessions.Unregister(c.Request.Context(), c.Param("studentId"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
