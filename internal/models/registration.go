package models

// Registration records a student's intent to sit a course in a given year.
type Registration struct {
	ID             string `db:"id" json:"id"`
	StudentID      string `db:"student_id" json:"student_id"`
	CourseID       string `db:"course_id" json:"course_id"`
	YearRegistered int    `db:"year_registered" json:"year_registered"`
	RegStatus      bool   `db:"reg_status" json:"reg_status"`
	CourseCode     string `db:"course_code" json:"course"`
	Semester       int    `db:"semester" json:"semester"`
	Units          int    `db:"units" json:"units"`
}

// RegistrationFilter narrows registration lookups. Zero values are ignored
// except Registered, which when set filters on reg_status.
type RegistrationFilter struct {
	StudentID  string
	CourseID   string
	Year       int
	Semester   int
	Registered *bool
}
