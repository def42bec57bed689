package models

import (
	"bytes"
	"encoding/json"
	"math"
)

// Row remarks.
const (
	RemarkPassed       = "Passed"
	RemarkFailed       = "Failed"
	RemarkPending      = "Pending..."
	RemarkDropped      = "DRP"
	RemarkUnconfigured = "Grade system not configured"
)

// Placeholder messages used when a student registered nothing for the term.
const (
	MessageNoCourses    = "Didn't register any courses this semester"
	MessageNoCarryovers = "Didn't register any carryovers this semester."
)

// ReportView selects which result states are visible to the caller.
type ReportView string

const (
	ReportViewOfficer ReportView = "officer"
	ReportViewAdmin   ReportView = "admin"
)

// Statuses returns the result states counted by the view.
func (v ReportView) Statuses() []ResultStatus {
	if v == ReportViewAdmin {
		return []ResultStatus{ResultOfficerApproved, ResultFinal}
	}
	return []ResultStatus{ResultSubmitted, ResultOfficerApproved, ResultFinal}
}

// CourseRow is one line of a student's term transcript.
type CourseRow struct {
	Course   string  `json:"course"`
	Units    int     `json:"units"`
	Score    int     `json:"score"`
	Exam     int     `json:"exam"`
	FirstCA  int     `json:"first_ca"`
	SecondCA int     `json:"second_ca"`
	ThirdCA  int     `json:"third_ca"`
	Grade    *string `json:"grade"`
	Remark   string  `json:"remark"`
	Points   float64 `json:"points"`
}

// CourseRows is either a list of rows or, when the student registered nothing,
// a message explaining why there are none.
type CourseRows struct {
	rows    []CourseRow
	message string
	isMsg   bool
}

// RowsOf wraps rows. A nil slice is kept as an empty list.
func RowsOf(rows []CourseRow) CourseRows {
	if rows == nil {
		rows = []CourseRow{}
	}
	return CourseRows{rows: rows}
}

// NoRegistration wraps a placeholder message.
func NoRegistration(message string) CourseRows {
	return CourseRows{message: message, isMsg: true}
}

// Rows returns the rows and true unless this is a placeholder.
func (c CourseRows) Rows() ([]CourseRow, bool) {
	return c.rows, !c.isMsg
}

// Message returns the placeholder and true when no rows exist.
func (c CourseRows) Message() (string, bool) {
	return c.message, c.isMsg
}

// MarshalJSON emits a JSON array of rows or the placeholder string.
func (c CourseRows) MarshalJSON() ([]byte, error) {
	if c.isMsg {
		return json.Marshal(c.message)
	}
	if c.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.rows)
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON.
func (c *CourseRows) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var msg string
		if err := json.Unmarshal(trimmed, &msg); err != nil {
			return err
		}
		*c = NoRegistration(msg)
		return nil
	}
	var rows []CourseRow
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return err
	}
	*c = RowsOf(rows)
	return nil
}

// TermTotals accumulates credit and grade-point sums.
type TermTotals struct {
	TCR int     `json:"tcr"`
	TCE int     `json:"tce"`
	TGP float64 `json:"tgp"`
}

// Add returns the sum of t and o.
func (t TermTotals) Add(o TermTotals) TermTotals {
	return TermTotals{TCR: t.TCR + o.TCR, TCE: t.TCE + o.TCE, TGP: t.TGP + o.TGP}
}

// Sub returns t minus o.
func (t TermTotals) Sub(o TermTotals) TermTotals {
	return TermTotals{TCR: t.TCR - o.TCR, TCE: t.TCE - o.TCE, TGP: t.TGP - o.TGP}
}

// GPA is TGP over earned credits, zero-guarded and rounded to two places.
func (t TermTotals) GPA() float64 {
	return GradePointAverage(t.TGP, t.TCE)
}

// GradePointAverage divides points by credits, treating zero credits as one.
func GradePointAverage(points float64, credits int) float64 {
	if credits <= 0 {
		credits = 1
	}
	return Round2(points / float64(credits))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Standing is a totals snapshot with its GPA.
type Standing struct {
	TCR int     `json:"tcr"`
	TCE int     `json:"tce"`
	TGP float64 `json:"tgp"`
	GPA float64 `json:"gpa"`
}

// StandingOf derives a standing from totals.
func StandingOf(t TermTotals) Standing {
	return Standing{TCR: t.TCR, TCE: t.TCE, TGP: Round2(t.TGP), GPA: t.GPA()}
}

// TermResult is the outcome of aggregating one course category for a term.
type TermResult struct {
	Rows   CourseRows
	Totals TermTotals
}

// HistoryResult is the cumulative standing up to a cutoff and the core courses
// still outstanding.
type HistoryResult struct {
	Totals  TermTotals
	Remarks []string
}

// StudentReport is one student's term and cumulative standing.
type StudentReport struct {
	StudentID  string     `json:"student_id"`
	Matric     string     `json:"matric"`
	Name       string     `json:"name"`
	Core       CourseRows `json:"core"`
	Electives  CourseRows `json:"electives"`
	Carryovers CourseRows `json:"carryovers"`
	TCE        int        `json:"tce"`
	TCR        int        `json:"tcr"`
	TGP        float64    `json:"tgp"`
	GPA        float64    `json:"gpa"`
	Previous   Standing   `json:"previous"`
	CGPA       float64    `json:"cgpa"`
	Remarks    []string   `json:"remarks"`
}

// CohortQuery identifies the cohort term a report covers.
type CohortQuery struct {
	GroupID    string     `json:"group_id"`
	StudentSet int        `json:"student_set"`
	Year       int        `json:"year_submitted"`
	Semester   int        `json:"semester"`
	View       ReportView `json:"view"`
}

// CohortReport is the full term report for a cohort.
type CohortReport struct {
	Query     CohortQuery     `json:"query"`
	Level     int             `json:"level"`
	Core      []CourseBinding `json:"core"`
	Electives []CourseBinding `json:"electives"`
	Results   []StudentReport `json:"results"`
}
