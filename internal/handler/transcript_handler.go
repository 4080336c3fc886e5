package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iagbolahan/college-registry-api/internal/service"
	"github.com/iagbolahan/college-registry-api/pkg/response"
)

// TranscriptHandler exposes transcript listing and export endpoints.
type TranscriptHandler struct {
	transcripts *service.TranscriptService
}

// NewTranscriptHandler constructs TranscriptHandler.
func NewTranscriptHandler(transcripts *service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts}
}

// Get godoc
// @Summary List the transcript entries of a student
// @Tags Transcripts
// @Produce json
// @Param id path string true "Student record ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *TranscriptHandler) Get(c *gin.Context) {
	rows, err := h.transcripts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Export a student transcript as CSV or PDF
// @Tags Transcripts
// @Produce octet-stream
// @Param id path string true "Student record ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Router /students/{id}/transcript/export [get]
func (h *TranscriptHandler) Export(c *gin.Context) {
	format := service.TranscriptFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	export, err := h.transcripts.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Payload)
}
