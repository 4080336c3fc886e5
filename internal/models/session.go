package models

import "time"

// Quarter is one of the four fixed offering periods of a year.
type Quarter string

const (
	QuarterFirst  Quarter = "Q1"
	QuarterSecond Quarter = "Q2"
	QuarterThird  Quarter = "Q3"
	QuarterFourth Quarter = "Q4"
)

// SessionStatus is the derived temporal classification of an offering. It is
// computed against a reference clock and never stored on the session row.
type SessionStatus string

const (
	StatusPending    SessionStatus = "PENDING"
	StatusCurrent    SessionStatus = "CURRENT"
	StatusHistorical SessionStatus = "HISTORICAL"
)

// Grade is the outcome recorded when a session is archived.
type Grade string

const (
	GradeDistinction Grade = "A"
	GradeVeryGood    Grade = "B"
	GradeGood        Grade = "C"
	GradePoor        Grade = "D"
	GradePass        Grade = "E"
	GradeFail        Grade = "F"
)

// Valid reports whether the grade belongs to the scale.
func (g Grade) Valid() bool {
	switch g {
	case GradeDistinction, GradeVeryGood, GradeGood, GradePoor, GradePass, GradeFail:
		return true
	}
	return false
}

// Session is a course offering partitioned by year and quarter. Course and
// teacher are weak references nulled on deletion of the referent.
type Session struct {
	ID         string    `db:"id" json:"id"`
	SectionNo  int       `db:"section_no" json:"section_no"`
	CourseCode *string   `db:"course_code" json:"course_code,omitempty"`
	TeacherID  *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Year       int       `db:"year" json:"year"`
	Quarter    Quarter   `db:"quarter" json:"quarter"`
	Version    int       `db:"version" json:"version"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SessionView pairs a session with its classification for a given clock.
type SessionView struct {
	Session
	Status SessionStatus `json:"status"`
}

// RosterEntry marks a session as promoted into the current roster.
type RosterEntry struct {
	SessionID  string    `db:"session_id" json:"session_id"`
	PromotedAt time.Time `db:"promoted_at" json:"promoted_at"`
}

// SessionArchive is the historical snapshot of a completed session. The grade
// is mandatory at archive time.
type SessionArchive struct {
	SessionID  string    `db:"session_id" json:"session_id"`
	Grade      Grade     `db:"grade" json:"grade"`
	ArchivedAt time.Time `db:"archived_at" json:"archived_at"`
}

// Registration enrols a student into a session on the current roster.
type Registration struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SessionID    string    `db:"session_id" json:"session_id"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// TranscriptEntry is one completed offering on a student's transcript.
type TranscriptEntry struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Grade      Grade     `db:"grade" json:"grade"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// TranscriptRow joins a transcript entry with offering details for listing
// and export.
type TranscriptRow struct {
	TranscriptEntry
	CourseCode *string `db:"course_code" json:"course_code,omitempty"`
	CourseName *string `db:"course_name" json:"course_name,omitempty"`
	Year       int     `db:"year" json:"year"`
	Quarter    Quarter `db:"quarter" json:"quarter"`
}

// SessionFilter defines filters supported by session list endpoints.
type SessionFilter struct {
	CourseCode string
	TeacherID  string
	Year       int
	Quarter    Quarter
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
