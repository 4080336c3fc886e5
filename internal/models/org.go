package models

import "time"

// College groups departments. Name is the primary key and the dean name is
// unique across colleges.
type College struct {
	Name      string    `db:"name" json:"name"`
	Dean      string    `db:"dean" json:"dean"`
	OfficeNo  int       `db:"office_no" json:"office_no"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Department belongs to a college and carries a head-of-department lecturer
// plus a membership set of lecturers ("belongs"). The HOD must be drawn from
// the membership set.
type Department struct {
	Name          string    `db:"name" json:"name"`
	Phone         string    `db:"phone" json:"phone"`
	OfficeNo      int       `db:"office_no" json:"office_no"`
	CollegeName   string    `db:"college_name" json:"college_name"`
	HODLecturerID *string   `db:"hod_lecturer_id" json:"hod_lecturer_id,omitempty"`
	Version       int       `db:"version" json:"version"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	LecturerIDs []string `db:"-" json:"lecturer_ids,omitempty"`
}

// Course is offered by a department. Code is the primary key and the course
// name is unique.
type Course struct {
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	DepartmentName string    `db:"department_name" json:"department_name"`
	Description    string    `db:"description" json:"description"`
	Version        int       `db:"version" json:"version"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
