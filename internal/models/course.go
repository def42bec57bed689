package models

// Course is a taught course owned by a group.
type Course struct {
	ID         string  `db:"id" json:"id"`
	Code       string  `db:"code" json:"course"`
	Title      string  `db:"title" json:"title"`
	Units      int     `db:"units" json:"units"`
	Semester   int     `db:"semester" json:"semester"`
	Level      int     `db:"level" json:"level"`
	GroupID    string  `db:"group_id" json:"group_id"`
	LecturerID *string `db:"lecturer_id" json:"lecturer_id,omitempty"`
	Active     bool    `db:"active" json:"status"`
}

// CourseType distinguishes mandatory from optional cohort courses.
type CourseType string

const (
	CourseTypeCore     CourseType = "core"
	CourseTypeElective CourseType = "elective"
)

// CourseBinding attaches a course to a group set as core or elective.
type CourseBinding struct {
	ID         string     `db:"id" json:"id"`
	GroupID    string     `db:"group_id" json:"group_id"`
	StudentSet int        `db:"student_set" json:"student_set"`
	CourseType CourseType `db:"course_type" json:"course_type"`
	Active     bool       `db:"active" json:"status"`
	Course     Course     `db:"course" json:"course"`
}

// BindingFilter selects course bindings for a cohort.
type BindingFilter struct {
	GroupID    string
	StudentSet int
	CourseType CourseType
}

// Courses returns the bound courses in binding order.
func Courses(bindings []CourseBinding) []Course {
	out := make([]Course, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.Course)
	}
	return out
}
