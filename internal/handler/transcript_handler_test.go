package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/internal/service"
)

type transcriptRepoMock struct {
	rows []models.TranscriptRow
}

func (m *transcriptRepoMock) Transcript(ctx context.Context, studentID string) ([]models.TranscriptRow, error) {
	return m.rows, nil
}

type studentReaderMock struct {
	student *models.StudentRecord
}

func (m *studentReaderMock) FindByID(ctx context.Context, id string) (*models.StudentRecord, error) {
	return m.student, nil
}

type personReaderMock struct {
	person *models.Person
}

func (m *personReaderMock) FindByRegNo(ctx context.Context, regNo string) (*models.Person, error) {
	return m.person, nil
}

func newTranscriptHandler() *TranscriptHandler {
	code := "CSC101"
	name := "Intro to Computing"
	svc := service.NewTranscriptService(
		&transcriptRepoMock{rows: []models.TranscriptRow{{
			TranscriptEntry: models.TranscriptEntry{
				ID:         "te-1",
				StudentID:  "stu-1",
				SessionID:  "sess-1",
				Grade:      models.GradeVeryGood,
				RecordedAt: time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC),
			},
			CourseCode: &code,
			CourseName: &name,
			Year:       2025,
			Quarter:    models.QuarterFourth,
		}}},
		&studentReaderMock{student: &models.StudentRecord{ID: "stu-1", PersonRegNo: "REG001"}},
		&personReaderMock{person: &models.Person{RegNo: "REG001", FirstName: "Ada", LastName: "Obi"}},
		"",
		nil,
	)
	return NewTranscriptHandler(svc)
}

func TestTranscriptHandlerExportCSVHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTranscriptHandler()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/stu-1/transcript/export?format=csv", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="transcript-REG001.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "CSC101")
}

func TestTranscriptHandlerExportRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTranscriptHandler()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/stu-1/transcript/export?format=xlsx", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.Export(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope["error"])
}

func TestTranscriptHandlerGetListsEntries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTranscriptHandler()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/stu-1/transcript", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"grade"`)
}
