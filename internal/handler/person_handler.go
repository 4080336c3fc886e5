package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/internal/service"
	appErrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// PersonHandler exposes person endpoints.
type PersonHandler struct {
	persons *service.PersonService
}

// NewPersonHandler constructs PersonHandler.
func NewPersonHandler(persons *service.PersonService) *PersonHandler {
	return &PersonHandler{persons: persons}
}

// List godoc
// @Summary List persons
// @Tags Persons
// @Produce json
// @Param category query string false "Filter by category (TEACHING, STUDENT, GRADUATE)"
// @Param search query string false "Search by name or registration number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /persons [get]
func (h *PersonHandler) List(c *gin.Context) {
	var filter models.PersonFilter
	filter.Category = models.Category(strings.ToUpper(c.Query("category")))
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	persons, pagination, err := h.persons.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, persons, pagination)
}

// Get godoc
// @Summary Get a person with role flags
// @Tags Persons
// @Produce json
// @Param regNo path string true "Registration number"
// @Success 200 {object} response.Envelope
// @Router /persons/{regNo} [get]
func (h *PersonHandler) Get(c *gin.Context) {
	person, flags, err := h.persons.Get(c.Request.Context(), c.Param("regNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"person": person, "roles": flags}, nil)
}

// Create godoc
// @Summary Create a person
// @Tags Persons
// @Accept json
// @Produce json
// @Param payload body service.CreatePersonRequest true "Person payload"
// @Success 201 {object} response.Envelope
// @Router /persons [post]
func (h *PersonHandler) Create(c *gin.Context) {
	var req service.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	person, err := h.persons.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, person)
}

// Update godoc
// @Summary Update a person
// @Tags Persons
// @Accept json
// @Produce json
// @Param regNo path string true "Registration number"
// @Param payload body service.UpdatePersonRequest true "Person payload"
// @Success 200 {object} response.Envelope
// @Router /persons/{regNo} [put]
func (h *PersonHandler) Update(c *gin.Context) {
	var req service.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	person, err := h.persons.Update(c.Request.Context(), c.Param("regNo"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// Delete godoc
// @Summary Delete a person and dependent role records
// @Tags Persons
// @Produce json
// @Param regNo path string true "Registration number"
// @Param version query int true "Expected version"
// @Success 204
// @Router /persons/{regNo} [delete]
func (h *PersonHandler) Delete(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.persons.Delete(c.Request.Context(), c.Param("regNo"), version); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
