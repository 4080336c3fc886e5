package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/internal/rules"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

type mockSessionRepo struct {
	sessions map[string]models.Session
	roster   map[string]bool
	archived map[string]bool
	archive  *models.SessionArchive
	promoted []string
}

func (m *mockSessionRepo) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	var out []models.Session
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if m.sessions == nil {
		m.sessions = make(map[string]models.Session)
	}
	if session.ID == "" {
		session.ID = "new-session"
	}
	session.Version = 1
	m.sessions[session.ID] = *session
	return nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.Session) error {
	if _, ok := m.sessions[session.ID]; !ok {
		return sql.ErrNoRows
	}
	m.sessions[session.ID] = *session
	return nil
}

func (m *mockSessionRepo) OnRoster(ctx context.Context, sessionID string) (bool, error) {
	return m.roster[sessionID], nil
}

func (m *mockSessionRepo) IsArchived(ctx context.Context, sessionID string) (bool, error) {
	return m.archived[sessionID], nil
}

func (m *mockSessionRepo) PromoteToRoster(ctx context.Context, entry *models.RosterEntry) error {
	if m.roster == nil {
		m.roster = make(map[string]bool)
	}
	m.roster[entry.SessionID] = true
	m.promoted = append(m.promoted, entry.SessionID)
	return nil
}

func (m *mockSessionRepo) Archive(ctx context.Context, archive *models.SessionArchive) error {
	if m.archived == nil {
		m.archived = make(map[string]bool)
	}
	m.archived[archive.SessionID] = true
	delete(m.roster, archive.SessionID)
	m.archive = archive
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string, version int) error {
	if _, ok := m.sessions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.sessions, id)
	return nil
}

type mockRegistrationRepo struct {
	registrations map[string]models.Registration
}

func regKey(studentID, sessionID string) string { return studentID + "/" + sessionID }

func (m *mockRegistrationRepo) Register(ctx context.Context, reg *models.Registration) error {
	if m.registrations == nil {
		m.registrations = make(map[string]models.Registration)
	}
	if reg.ID == "" {
		reg.ID = "new-registration"
	}
	m.registrations[regKey(reg.StudentID, reg.SessionID)] = *reg
	return nil
}

func (m *mockRegistrationRepo) Unregister(ctx context.Context, studentID, sessionID string) error {
	key := regKey(studentID, sessionID)
	if _, ok := m.registrations[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.registrations, key)
	return nil
}

func (m *mockRegistrationRepo) IsRegistered(ctx context.Context, studentID, sessionID string) (bool, error) {
	_, ok := m.registrations[regKey(studentID, sessionID)]
	return ok, nil
}

func (m *mockRegistrationRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Registration, error) {
	var out []models.Registration
	for _, r := range m.registrations {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockCourseReader struct {
	courses map[string]models.Course
}

func (m *mockCourseReader) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	if c, ok := m.courses[code]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type mockResearcherReader struct {
	researchers map[string]models.Researcher
}

func (m *mockResearcherReader) FindByID(ctx context.Context, id string) (*models.Researcher, error) {
	if r, ok := m.researchers[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentReader struct {
	students map[string]models.StudentRecord
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.StudentRecord, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

// fixedAt pins the service clock to May 2026, inside Q2.
func fixedAt(svc *SessionService) {
	svc.now = func() time.Time { return time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC) }
}

func newTestSessionService(repo *mockSessionRepo, enrollments *mockRegistrationRepo) *SessionService {
	svc := NewSessionService(repo, enrollments,
		&mockCourseReader{courses: map[string]models.Course{"CSC401": {Code: "CSC401"}}},
		&mockResearcherReader{researchers: map[string]models.Researcher{"res-1": {ID: "res-1"}}},
		&mockStudentReader{students: map[string]models.StudentRecord{"stu-1": {ID: "stu-1"}}},
		nil, nil, rules.DefaultCalendar(), 0, nil, nil)
	fixedAt(svc)
	return svc
}

func TestCreateSessionClassifiesUpcomingQuarterPending(t *testing.T) {
	repo := &mockSessionRepo{}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	view, err := svc.Create(context.Background(), CreateSessionRequest{SectionNo: 1, Year: 2026, Quarter: "Q3"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, view.Status)
}

func TestCreateSessionRejectsFutureYear(t *testing.T) {
	svc := newTestSessionService(&mockSessionRepo{}, &mockRegistrationRepo{})

	_, err := svc.Create(context.Background(), CreateSessionRequest{SectionNo: 1, Year: 2027, Quarter: "Q1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}

func TestCreateSessionRejectsUnknownCourse(t *testing.T) {
	svc := newTestSessionService(&mockSessionRepo{}, &mockRegistrationRepo{})

	code := "NOPE999"
	_, err := svc.Create(context.Background(), CreateSessionRequest{SectionNo: 1, Year: 2026, Quarter: "Q2", CourseCode: &code})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrReferential)
}

func TestPromoteToCurrentRejectsElapsedQuarter(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2026, Quarter: models.QuarterFirst, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	_, err := svc.PromoteToCurrent(context.Background(), "sess-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotCurrentPeriod)
}

func TestPromoteToCurrentAcceptsActiveQuarter(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2026, Quarter: models.QuarterSecond, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	entry, err := svc.PromoteToCurrent(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", entry.SessionID)
	assert.True(t, repo.roster["sess-1"])
}

func TestArchiveRejectsCurrentSession(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2026, Quarter: models.QuarterSecond, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	_, err := svc.Archive(context.Background(), "sess-1", ArchiveSessionRequest{Grade: "A", Version: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotHistoricalPeriod)
}

func TestArchiveRecordsGradeForElapsedQuarter(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2026, Quarter: models.QuarterFirst, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	archive, err := svc.Archive(context.Background(), "sess-1", ArchiveSessionRequest{Grade: "B", Version: 1})
	require.NoError(t, err)
	assert.Equal(t, models.GradeVeryGood, archive.Grade)
	assert.True(t, repo.archived["sess-1"])
}

func TestArchiveRejectsUnknownGrade(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2025, Quarter: models.QuarterFourth, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	_, err := svc.Archive(context.Background(), "sess-1", ArchiveSessionRequest{Grade: "Z", Version: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}

func TestArchiveIsNotRepeatable(t *testing.T) {
	repo := &mockSessionRepo{
		sessions: map[string]models.Session{
			"sess-1": {ID: "sess-1", Year: 2025, Quarter: models.QuarterFourth, Version: 1},
		},
		archived: map[string]bool{"sess-1": true},
	}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	_, err := svc.Archive(context.Background(), "sess-1", ArchiveSessionRequest{Grade: "A", Version: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRegisterRequiresRosterMembership(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2026, Quarter: models.QuarterSecond, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	_, err := svc.Register(context.Background(), "stu-1", "sess-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotCurrentPeriod)
}

func TestRegisterEnrolsStudentOnRosterSession(t *testing.T) {
	repo := &mockSessionRepo{
		sessions: map[string]models.Session{
			"sess-1": {ID: "sess-1", Year: 2026, Quarter: models.QuarterSecond, Version: 1},
		},
		roster: map[string]bool{"sess-1": true},
	}
	enrollments := &mockRegistrationRepo{}
	svc := newTestSessionService(repo, enrollments)

	reg, err := svc.Register(context.Background(), "stu-1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", reg.SessionID)

	_, err = svc.Register(context.Background(), "stu-1", "sess-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdateSessionFrozenAfterArchive(t *testing.T) {
	repo := &mockSessionRepo{
		sessions: map[string]models.Session{
			"sess-1": {ID: "sess-1", Year: 2025, Quarter: models.QuarterFourth, Version: 1},
		},
		archived: map[string]bool{"sess-1": true},
	}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	_, err := svc.Update(context.Background(), "sess-1", UpdateSessionRequest{SectionNo: 2, Year: 2025, Quarter: "Q4", Version: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGetClassifiesPastYearHistorical(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2024, Quarter: models.QuarterFourth, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	view, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusHistorical, view.Status)
}

func TestStatusHonoursCallerClock(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2026, Quarter: models.QuarterSecond, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	view, err := svc.Status(context.Background(), "sess-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCurrent, view.Status)

	view, err = svc.Status(context.Background(), "sess-1", &rules.ReferenceClock{Year: 2026, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, view.Status)

	view, err = svc.Status(context.Background(), "sess-1", &rules.ReferenceClock{Year: 2027, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, models.StatusHistorical, view.Status)
}

func TestStatusRejectsMalformedClock(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", Year: 2026, Quarter: models.QuarterSecond, Version: 1},
	}}
	svc := newTestSessionService(repo, &mockRegistrationRepo{})

	_, err := svc.Status(context.Background(), "sess-1", &rules.ReferenceClock{Year: 2026, Month: 13})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}
