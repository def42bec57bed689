package models

import "time"

// Student is an enrolled student belonging to a group cohort.
type Student struct {
	ID         string    `db:"id" json:"id"`
	Matric     string    `db:"matric" json:"matric"`
	Name       string    `db:"name" json:"name"`
	GroupID    string    `db:"group_id" json:"group_id"`
	StudentSet int       `db:"student_set" json:"student_set"`
	EntryYear  int       `db:"entry_year" json:"entry_year"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CohortFilter selects students of one group set that had entered by Year.
type CohortFilter struct {
	GroupID    string
	StudentSet int
	Year       int
}
