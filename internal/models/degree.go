package models

import "time"

// DegreeType classifies historical academic credentials.
type DegreeType string

const (
	DegreeAssociate DegreeType = "ASSOCIATE"
	DegreeBachelor  DegreeType = "BACHELOR"
	DegreeMaster    DegreeType = "MASTER"
	DegreeDoctorate DegreeType = "DOCTORATE"
)

// Valid reports whether the degree type is part of the closed set.
func (d DegreeType) Valid() bool {
	switch d {
	case DegreeAssociate, DegreeBachelor, DegreeMaster, DegreeDoctorate:
		return true
	}
	return false
}

// Discipline is the college discipline a degree was earned in.
type Discipline string

const (
	DisciplineScience     Discipline = "SCIENCE"
	DisciplineEngineering Discipline = "ENGINEERING"
	DisciplineAgriculture Discipline = "AGRICULTURE"
	DisciplineMedicine    Discipline = "MEDICINE"
	DisciplineEconomics   Discipline = "ECONOMICS"
	DisciplineGeneral     Discipline = "GENERAL_STUDIES"
)

// Valid reports whether the discipline is part of the closed set.
func (d Discipline) Valid() bool {
	switch d {
	case DisciplineScience, DisciplineEngineering, DisciplineAgriculture,
		DisciplineMedicine, DisciplineEconomics, DisciplineGeneral:
		return true
	}
	return false
}

// Degree is a past credential referenced by graduate records. Year must lie
// strictly in the past relative to the reference clock.
type Degree struct {
	ID         string     `db:"id" json:"id"`
	Discipline Discipline `db:"discipline" json:"discipline"`
	Type       DegreeType `db:"degree_type" json:"degree_type"`
	Year       int        `db:"year" json:"year"`
	Version    int        `db:"version" json:"version"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Grant funds research, owned by a lecturer acting as investigator.
type Grant struct {
	GrantNo        int       `db:"grant_no" json:"grant_no"`
	Title          string    `db:"title" json:"title"`
	Agency         string    `db:"agency" json:"agency"`
	InvestigatorID string    `db:"investigator_id" json:"investigator_id"`
	Version        int       `db:"version" json:"version"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Support is the funding window of a grant. StartDate must not be after
// EndDate and the time percentage stays within [0,100].
type Support struct {
	ID          string    `db:"id" json:"id"`
	GrantNo     int       `db:"grant_no" json:"grant_no"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	TimePercent int       `db:"time_percent" json:"time_percent"`
	Version     int       `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
