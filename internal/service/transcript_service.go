package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
	"github.com/iagbolahan/college-registry-api/pkg/export"
)

type transcriptRepository interface {
	Transcript(ctx context.Context, studentID string) ([]models.TranscriptRow, error)
}

type transcriptStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentRecord, error)
}

type transcriptPersonReader interface {
	FindByRegNo(ctx context.Context, regNo string) (*models.Person, error)
}

// TranscriptFormat selects the export rendering.
type TranscriptFormat string

const (
	TranscriptFormatCSV TranscriptFormat = "csv"
	TranscriptFormatPDF TranscriptFormat = "pdf"
)

// TranscriptExport carries a rendered transcript document.
type TranscriptExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// TranscriptService produces transcript listings and document exports.
type TranscriptService struct {
	enrollments transcriptRepository
	students    transcriptStudentReader
	persons     transcriptPersonReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	title       string
	logger      *zap.Logger
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(enrollments transcriptRepository, students transcriptStudentReader, persons transcriptPersonReader, title string, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Academic Transcript"
	}
	return &TranscriptService{
		enrollments: enrollments,
		students:    students,
		persons:     persons,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		title:       title,
		logger:      logger,
	}
}

func (s *TranscriptService) load(ctx context.Context, studentID string) (*models.Person, []models.TranscriptRow, error) {
	rec, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, apperrors.Clone(apperrors.ErrNotFound, "student record not found")
		}
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load student record")
	}
	person, err := s.persons.FindByRegNo(ctx, rec.PersonRegNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, apperrors.Clone(apperrors.ErrNotFound, "person not found")
		}
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load person")
	}
	rows, err := s.enrollments.Transcript(ctx, studentID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load transcript")
	}
	return person, rows, nil
}

// Get returns the student's transcript rows.
func (s *TranscriptService) Get(ctx context.Context, studentID string) ([]models.TranscriptRow, error) {
	_, rows, err := s.load(ctx, studentID)
	return rows, err
}

func transcriptTable(rows []models.TranscriptRow) export.Table {
	table := export.Table{Columns: []string{"Year", "Quarter", "Course Code", "Course", "Grade", "Recorded"}}
	for _, row := range rows {
		code := ""
		if row.CourseCode != nil {
			code = *row.CourseCode
		}
		name := ""
		if row.CourseName != nil {
			name = *row.CourseName
		}
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", row.Year),
			string(row.Quarter),
			code,
			name,
			string(row.Grade),
			row.RecordedAt.Format("2006-01-02"),
		})
	}
	return table
}

// Export renders a student's transcript as CSV or PDF.
func (s *TranscriptService) Export(ctx context.Context, studentID string, format TranscriptFormat) (*TranscriptExport, error) {
	person, rows, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	table := transcriptTable(rows)

	switch format {
	case TranscriptFormatCSV:
		payload, err := s.csv.Render(table)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to render csv transcript")
		}
		return &TranscriptExport{
			Filename:    fmt.Sprintf("transcript-%s.csv", person.RegNo),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case TranscriptFormatPDF:
		subtitle := fmt.Sprintf("%s (%s)", person.FullName(), person.RegNo)
		payload, err := s.pdf.Render(table, s.title, subtitle)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to render pdf transcript")
		}
		return &TranscriptExport{
			Filename:    fmt.Sprintf("transcript-%s.pdf", person.RegNo),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "transcript", "format", "known_format", fmt.Sprintf("unknown export format %q", format))
	}
}
