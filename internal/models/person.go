package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is the top-level role classification of a person. Role records may
// only exist under a compatible category, and the category is immutable once
// any role record references the person.
type Category string

const (
	CategoryTeaching Category = "TEACHING"
	CategoryStudent  Category = "STUDENT"
	CategoryGraduate Category = "GRADUATE"
)

// Valid reports whether the category is a member of the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryTeaching, CategoryStudent, CategoryGraduate:
		return true
	}
	return false
}

// Sex codes carried on the person record.
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexPrivate Sex = "P"
)

// Person is the base entity every role record specialises. RegNo is the
// natural primary key (registration identifier).
type Person struct {
	RegNo      string    `db:"reg_no" json:"reg_no"`
	FirstName  string    `db:"first_name" json:"first_name"`
	MiddleName string    `db:"middle_name" json:"middle_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Birthday   time.Time `db:"birthday" json:"birthday"`
	Category   Category  `db:"category" json:"category"`
	Sex        Sex       `db:"sex" json:"sex"`
	AptNo      int       `db:"apt_no" json:"apt_no"`
	LaneNo     int       `db:"lane_no" json:"lane_no"`
	Street     string    `db:"street" json:"street"`
	City       string    `db:"city" json:"city"`
	State      string    `db:"state" json:"state"`
	Zipcode    string    `db:"zipcode" json:"zipcode"`
	Version    int       `db:"version" json:"version"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the person's full name in upper case.
func (p Person) FullName() string {
	parts := []string{p.FirstName, p.MiddleName, p.LastName}
	joined := strings.Join(parts, " ")
	return strings.ToUpper(strings.Join(strings.Fields(joined), " "))
}

// Address returns the formatted postal address of the person.
func (p Person) Address() string {
	return fmt.Sprintf("no %d, lane %d, %s, %s, %s", p.AptNo, p.LaneNo, p.Street, p.City, p.State)
}

// PersonFilter defines filters supported by person list endpoints.
type PersonFilter struct {
	Category  Category
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
