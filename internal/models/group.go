package models

import "time"

// Group is an institutional unit (faculty + department) owning courses and students.
type Group struct {
	ID           string    `db:"id" json:"id"`
	Faculty      string    `db:"faculty" json:"faculty"`
	Department   string    `db:"department" json:"department"`
	GroupAdminID *string   `db:"group_admin_id" json:"group_admin_id,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GroupOptions configures grading and registration limits for one group set.
type GroupOptions struct {
	ID          string    `db:"id" json:"id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	Set         int       `db:"student_set" json:"set"`
	GradeSystem string    `db:"grade_system" json:"grade_system"`
	Levels      int       `db:"levels" json:"levels"`
	RegCap      int       `db:"reg_cap" json:"reg_cap"`
	RegNorm     int       `db:"reg_norm" json:"reg_norm"`
	RegMin      int       `db:"reg_min" json:"reg_min"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Defaults used when options are created lazily.
const (
	DefaultLevels  = 4
	DefaultRegCap  = 24
	DefaultRegNorm = 20
	DefaultRegMin  = 15
)

// AppOptions holds institution-wide settings.
type AppOptions struct {
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
