package dto

import "github.com/mhizterkeyz/resultify-api/internal/models"

// CohortTermQuery captures the query string of report and broadsheet requests.
type CohortTermQuery struct {
	StudentSet int    `form:"student_set" binding:"required,min=1900"`
	Year       int    `form:"year_submitted" binding:"required,min=1900"`
	Semester   int    `form:"semester" binding:"required,oneof=1 2"`
	Format     string `form:"format" binding:"omitempty,oneof=csv pdf"`
}

// TransitionRequest is the payload of submit, approve and reject actions.
type TransitionRequest struct {
	StudentSet int    `json:"student_set" binding:"required,min=1900"`
	Year       int    `json:"year_submitted" binding:"required,min=1900"`
	Semester   int    `json:"semester" binding:"required,oneof=1 2"`
	CourseID   string `json:"course_id"`
	Message    string `json:"message" binding:"max=2000"`
}

// Scope converts the request into a result scope for groupID.
func (r TransitionRequest) Scope(groupID string) models.ResultScope {
	return models.ResultScope{
		GroupID:    groupID,
		StudentSet: r.StudentSet,
		Year:       r.Year,
		Semester:   r.Semester,
		CourseID:   r.CourseID,
	}
}

// TransitionResponse reports a completed transition with the refreshed cohort report.
type TransitionResponse struct {
	Message  string               `json:"message"`
	Affected int                  `json:"affected"`
	Notified int                  `json:"notified"`
	Report   *models.CohortReport `json:"report"`
}
