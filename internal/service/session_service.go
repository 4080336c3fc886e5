package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/internal/rules"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	OnRoster(ctx context.Context, sessionID string) (bool, error)
	IsArchived(ctx context.Context, sessionID string) (bool, error)
	PromoteToRoster(ctx context.Context, entry *models.RosterEntry) error
	Archive(ctx context.Context, archive *models.SessionArchive) error
	Delete(ctx context.Context, id string, version int) error
}

type registrationRepository interface {
	Register(ctx context.Context, reg *models.Registration) error
	Unregister(ctx context.Context, studentID, sessionID string) error
	IsRegistered(ctx context.Context, studentID, sessionID string) (bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Registration, error)
}

type courseReader interface {
	FindByCode(ctx context.Context, code string) (*models.Course, error)
}

type researcherReader interface {
	FindByID(ctx context.Context, id string) (*models.Researcher, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentRecord, error)
}

type sessionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type ruleMetrics interface {
	ObserveClassification(status models.SessionStatus)
	ObserveRuleRejection(code string)
}

// CreateSessionRequest describes the session creation payload.
type CreateSessionRequest struct {
	SectionNo  int     `json:"section_no" validate:"required,min=1"`
	CourseCode *string `json:"course_code"`
	TeacherID  *string `json:"teacher_id"`
	Year       int     `json:"year" validate:"required"`
	Quarter    string  `json:"quarter" validate:"required"`
}

// UpdateSessionRequest describes the session update payload.
type UpdateSessionRequest struct {
	SectionNo  int     `json:"section_no" validate:"required,min=1"`
	CourseCode *string `json:"course_code"`
	TeacherID  *string `json:"teacher_id"`
	Year       int     `json:"year" validate:"required"`
	Quarter    string  `json:"quarter" validate:"required"`
	Version    int     `json:"version" validate:"required,min=1"`
}

// ArchiveSessionRequest carries the mandatory grade recorded at archive time.
type ArchiveSessionRequest struct {
	Grade   string `json:"grade" validate:"required"`
	Version int    `json:"version" validate:"required,min=1"`
}

const sessionCacheTTLDefault = 5 * time.Minute

// SessionService orchestrates offering lifecycles: creation, temporal
// classification, roster promotion, archival and student registration. The
// classification is always derived from the reference clock, never stored.
type SessionService struct {
	repo        sessionRepository
	enrollments registrationRepository
	courses     courseReader
	researchers researcherReader
	students    studentReader
	cache       sessionCache
	metrics     ruleMetrics
	calendar    rules.Calendar
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionService constructs SessionService. Cache and metrics may be nil.
func NewSessionService(repo sessionRepository, enrollments registrationRepository, courses courseReader, researchers researcherReader, students studentReader, cache sessionCache, metrics ruleMetrics, calendar rules.Calendar, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = sessionCacheTTLDefault
	}
	return &SessionService{
		repo:        repo,
		enrollments: enrollments,
		courses:     courses,
		researchers: researchers,
		students:    students,
		cache:       cache,
		metrics:     metrics,
		calendar:    calendar,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SessionService) clock() rules.ReferenceClock {
	return rules.ClockFromTime(s.now().UTC())
}

func (s *SessionService) classify(session models.Session) models.SessionView {
	status := rules.Classify(session, s.clock(), s.calendar)
	if s.metrics != nil {
		s.metrics.ObserveClassification(status)
	}
	return models.SessionView{Session: session, Status: status}
}

func (s *SessionService) reject(err *apperrors.Error) error {
	if s.metrics != nil && err != nil {
		s.metrics.ObserveRuleRejection(err.Code)
	}
	return err
}

func (s *SessionService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "sessions:*"); err != nil {
		s.logger.Warn("session cache invalidation failed", zap.Error(err))
	}
}

func listCacheKey(filter models.SessionFilter, clock rules.ReferenceClock) string {
	return fmt.Sprintf("sessions:list:%s:%s:%d:%s:%d:%d:%s:%s:%d:%d",
		filter.CourseCode, filter.TeacherID, filter.Year, filter.Quarter,
		filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder,
		clock.Year, clock.Month)
}

type cachedSessionList struct {
	Sessions []models.SessionView `json:"sessions"`
	Total    int                  `json:"total"`
}

// List returns classified sessions with pagination metadata. Listings are
// cached per filter and reference month.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionView, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	key := listCacheKey(filter, s.clock())
	if s.cache != nil {
		var cached cachedSessionList
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: cached.Total}, nil
		} else if !errors.Is(err, apperrors.ErrCacheMiss) {
			s.logger.Warn("session cache read failed", zap.Error(err))
		}
	}

	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list sessions")
	}
	views := make([]models.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, s.classify(session))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedSessionList{Sessions: views, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("session cache write failed", zap.Error(err))
		}
	}
	return views, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a session with its derived classification.
func (s *SessionService) Get(ctx context.Context, id string) (*models.SessionView, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load session")
	}
	view := s.classify(*session)
	return &view, nil
}

// Status classifies a session against an explicit reference clock. A nil
// clock falls back to the server clock.
func (s *SessionService) Status(ctx context.Context, id string, clock *rules.ReferenceClock) (*models.SessionView, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load session")
	}
	at := s.clock()
	if clock != nil {
		if rerr := rules.ValidateClock(*clock); rerr != nil {
			return nil, rerr
		}
		at = *clock
	}
	status := rules.Classify(*session, at, s.calendar)
	if s.metrics != nil {
		s.metrics.ObserveClassification(status)
	}
	return &models.SessionView{Session: *session, Status: status}, nil
}

func (s *SessionService) checkSessionLinks(ctx context.Context, courseCode, teacherID *string) error {
	if courseCode != nil && *courseCode != "" {
		if _, err := s.courses.FindByCode(ctx, *courseCode); err != nil {
			if err == sql.ErrNoRows {
				return apperrors.Clone(apperrors.ErrReferential, fmt.Sprintf("course %q not found", *courseCode))
			}
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load course")
		}
	}
	if teacherID != nil && *teacherID != "" {
		if _, err := s.researchers.FindByID(ctx, *teacherID); err != nil {
			if err == sql.ErrNoRows {
				return apperrors.Clone(apperrors.ErrReferential, "teaching researcher not found")
			}
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load researcher")
		}
	}
	return nil
}

// Create registers a session offering.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*models.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid session payload")
	}
	session := &models.Session{
		SectionNo:  req.SectionNo,
		CourseCode: req.CourseCode,
		TeacherID:  req.TeacherID,
		Year:       req.Year,
		Quarter:    models.Quarter(req.Quarter),
	}
	if rerr := rules.ValidateSession(*session, s.clock(), s.calendar); rerr != nil {
		return nil, s.reject(rerr)
	}
	if err := s.checkSessionLinks(ctx, req.CourseCode, req.TeacherID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create session")
	}
	s.invalidate(ctx)
	s.logger.Info("session created", zap.String("session_id", session.ID), zap.Int("year", session.Year), zap.String("quarter", string(session.Quarter)))
	view := s.classify(*session)
	return &view, nil
}

// Update rewrites a session's mutable fields. Archived sessions are frozen.
func (s *SessionService) Update(ctx context.Context, id string, req UpdateSessionRequest) (*models.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid session payload")
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load session")
	}
	archived, err := s.repo.IsArchived(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check archive")
	}
	if archived {
		return nil, apperrors.Clone(apperrors.ErrConflict, "archived session is immutable")
	}

	session.SectionNo = req.SectionNo
	session.CourseCode = req.CourseCode
	session.TeacherID = req.TeacherID
	session.Year = req.Year
	session.Quarter = models.Quarter(req.Quarter)
	session.Version = req.Version

	if rerr := rules.ValidateSession(*session, s.clock(), s.calendar); rerr != nil {
		return nil, s.reject(rerr)
	}
	if err := s.checkSessionLinks(ctx, req.CourseCode, req.TeacherID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return nil, apperrors.FromError(err)
	}
	s.invalidate(ctx)
	view := s.classify(*session)
	return &view, nil
}

// Delete removes a session and all derived rows.
func (s *SessionService) Delete(ctx context.Context, id string, version int) error {
	if err := s.repo.Delete(ctx, id, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return apperrors.FromError(err)
	}
	s.invalidate(ctx)
	return nil
}

// PromoteToCurrent places a session on the current roster. Only sessions whose
// period contains the reference month qualify.
func (s *SessionService) PromoteToCurrent(ctx context.Context, id string) (*models.RosterEntry, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load session")
	}
	archived, err := s.repo.IsArchived(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check archive")
	}
	if archived {
		return nil, apperrors.Clone(apperrors.ErrConflict, "archived session cannot return to the roster")
	}
	if rerr := rules.EnsureCurrent(*session, s.clock(), s.calendar); rerr != nil {
		return nil, s.reject(rerr)
	}

	entry := &models.RosterEntry{SessionID: id}
	if err := s.repo.PromoteToRoster(ctx, entry); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to promote session")
	}
	s.invalidate(ctx)
	s.logger.Info("session promoted to roster", zap.String("session_id", id))
	return entry, nil
}

// Archive freezes a session into the historical archive with its grade and
// converts every registration into a transcript entry.
func (s *SessionService) Archive(ctx context.Context, id string, req ArchiveSessionRequest) (*models.SessionArchive, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid archive payload")
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load session")
	}
	archived, err := s.repo.IsArchived(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check archive")
	}
	if archived {
		return nil, apperrors.Clone(apperrors.ErrConflict, "session already archived")
	}
	grade := models.Grade(req.Grade)
	if rerr := rules.EnsureArchivable(*session, grade, s.clock(), s.calendar); rerr != nil {
		return nil, s.reject(rerr)
	}

	archive := &models.SessionArchive{SessionID: id, Grade: grade}
	if err := s.repo.Archive(ctx, archive); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to archive session")
	}
	s.invalidate(ctx)
	s.logger.Info("session archived", zap.String("session_id", id), zap.String("grade", string(grade)))
	return archive, nil
}

// Register enrols a student into a session sitting on the current roster.
func (s *SessionService) Register(ctx context.Context, studentID, sessionID string) (*models.Registration, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrReferential, "student record not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load student record")
	}
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load session")
	}
	if rerr := rules.EnsureCurrent(*session, s.clock(), s.calendar); rerr != nil {
		return nil, s.reject(rerr)
	}
	onRoster, err := s.repo.OnRoster(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check roster")
	}
	if !onRoster {
		return nil, s.reject(apperrors.Clone(apperrors.ErrNotCurrentPeriod, "session is not on the current roster"))
	}
	registered, err := s.enrollments.IsRegistered(ctx, studentID, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check registration")
	}
	if registered {
		return nil, apperrors.Clone(apperrors.ErrConflict, "student already registered for session")
	}

	reg := &models.Registration{StudentID: studentID, SessionID: sessionID}
	if err := s.enrollments.Register(ctx, reg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to register student")
	}
	s.logger.Info("student registered", zap.String("student_id", studentID), zap.String("session_id", sessionID))
	return reg, nil
}

// Unregister drops a student from a session.
func (s *SessionService) Unregister(ctx context.Context, studentID, sessionID string) error {
	if err := s.enrollments.Unregister(ctx, studentID, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "registration not found")
		}
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to unregister student")
	}
	return nil
}

// Roster returns the registrations of one session.
func (s *SessionService) Roster(ctx context.Context, sessionID string) ([]models.Registration, error) {
	if _, err := s.repo.FindByID(ctx, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "session not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load session")
	}
	regs, err := s.enrollments.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list registrations")
	}
	return regs, nil
}
