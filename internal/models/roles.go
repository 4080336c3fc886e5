package models

import "time"

// RoleKind identifies the satellite role tables a person can occupy.
type RoleKind string

const (
	RoleLecturer   RoleKind = "LECTURER"
	RoleStudent    RoleKind = "STUDENT"
	RoleGraduate   RoleKind = "GRADUATE"
	RoleResearcher RoleKind = "RESEARCHER"
)

// Rank is the academic rank of a lecturer.
type Rank string

const (
	RankAssistant Rank = "ASSISTANT"
	RankAssociate Rank = "ASSOCIATE"
	RankAdjunct   Rank = "ADJUNCT"
	RankResearch  Rank = "RESEARCH"
	RankVisiting  Rank = "VISITING"
)

// Valid reports whether the rank is part of the closed set.
func (r Rank) Valid() bool {
	switch r {
	case RankAssistant, RankAssociate, RankAdjunct, RankResearch, RankVisiting:
		return true
	}
	return false
}

// Lecturer is the teaching role record, owned 1:1 by a Person with
// category TEACHING.
type Lecturer struct {
	ID            string    `db:"id" json:"id"`
	PersonRegNo   string    `db:"person_reg_no" json:"person_reg_no"`
	Rank          Rank      `db:"rank" json:"rank"`
	Salary        int       `db:"salary" json:"salary"`
	OfficeAddress string    `db:"office_address" json:"office_address"`
	OfficePhone   string    `db:"office_phone" json:"office_phone"`
	Version       int       `db:"version" json:"version"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Level is the class standing of a student. The level configured as terminal
// denotes graduate standing.
type Level string

const (
	LevelFreshman  Level = "FRESHMAN"
	LevelSophomore Level = "SOPHOMORE"
	LevelJunior    Level = "JUNIOR"
	LevelSenior    Level = "SENIOR"
	LevelGraduate  Level = "GRADUATE"
)

// Valid reports whether the level is part of the closed set.
func (l Level) Valid() bool {
	switch l {
	case LevelFreshman, LevelSophomore, LevelJunior, LevelSenior, LevelGraduate:
		return true
	}
	return false
}

// StudentRecord is the student role record, owned 1:1 by a Person with
// category STUDENT or GRADUATE. Minor and major are weak department
// references, nulled when the department is deleted.
type StudentRecord struct {
	ID          string    `db:"id" json:"id"`
	PersonRegNo string    `db:"person_reg_no" json:"person_reg_no"`
	Level       Level     `db:"level" json:"level"`
	MinorDept   *string   `db:"minor_department" json:"minor_department,omitempty"`
	MajorDept   *string   `db:"major_department" json:"major_department,omitempty"`
	Version     int       `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Graduate refines a StudentRecord at the terminal level. Advisor is a weak
// lecturer reference; the committee holds zero or more lecturers.
type Graduate struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	AdvisorID *string   `db:"advisor_id" json:"advisor_id,omitempty"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Committee []string `db:"-" json:"committee,omitempty"`
	DegreeIDs []string `db:"-" json:"degree_ids,omitempty"`
}

// RoleFlags summarises which role records exist for a person. It backs the
// snapshot role assignment is validated against.
type RoleFlags struct {
	HasLecturer   bool   `db:"has_lecturer" json:"has_lecturer"`
	HasStudent    bool   `db:"has_student" json:"has_student"`
	HasGraduate   bool   `db:"has_graduate" json:"has_graduate"`
	HasResearcher bool   `db:"has_researcher" json:"has_researcher"`
	StudentLevel  *Level `db:"student_level" json:"student_level,omitempty"`
}

// Any reports whether at least one role record exists.
func (f RoleFlags) Any() bool {
	return f.HasLecturer || f.HasStudent || f.HasGraduate || f.HasResearcher
}

// Researcher may teach sessions and hold grant support. Valid only when the
// person resolves to an existing Lecturer or Graduate record.
type Researcher struct {
	ID          string    `db:"id" json:"id"`
	PersonRegNo string    `db:"person_reg_no" json:"person_reg_no"`
	Version     int       `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
