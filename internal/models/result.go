package models

import "fmt"

// ResultStatus is the lifecycle state of a result row.
type ResultStatus int

const (
	ResultDraft           ResultStatus = 1
	ResultSubmitted       ResultStatus = 2
	ResultOfficerApproved ResultStatus = 3
	ResultFinal           ResultStatus = 4
)

func (s ResultStatus) String() string {
	switch s {
	case ResultDraft:
		return "draft"
	case ResultSubmitted:
		return "submitted"
	case ResultOfficerApproved:
		return "officer_approved"
	case ResultFinal:
		return "final"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is a known state.
func (s ResultStatus) Valid() bool {
	return s >= ResultDraft && s <= ResultFinal
}

// Transition names a bulk lifecycle move.
type Transition string

const (
	TransitionOfficerSubmit Transition = "officer_submit"
	TransitionOfficerReject Transition = "officer_reject"
	TransitionAdminApprove  Transition = "admin_approve"
	TransitionAdminReject   Transition = "admin_reject"
)

// TransitionRule lists the source states a transition accepts and its target.
type TransitionRule struct {
	From []ResultStatus
	To   ResultStatus
}

var transitionTable = map[Transition]TransitionRule{
	TransitionOfficerSubmit: {From: []ResultStatus{ResultSubmitted}, To: ResultOfficerApproved},
	TransitionOfficerReject: {From: []ResultStatus{ResultSubmitted}, To: ResultDraft},
	TransitionAdminApprove:  {From: []ResultStatus{ResultOfficerApproved, ResultFinal}, To: ResultFinal},
	TransitionAdminReject:   {From: []ResultStatus{ResultOfficerApproved, ResultFinal}, To: ResultSubmitted},
}

// Rule returns the rule for t.
func (t Transition) Rule() (TransitionRule, error) {
	rule, ok := transitionTable[t]
	if !ok {
		return TransitionRule{}, fmt.Errorf("unknown transition %q", t)
	}
	return rule, nil
}

// Allows reports whether a row in state s may take this rule.
func (r TransitionRule) Allows(s ResultStatus) bool {
	for _, from := range r.From {
		if from == s {
			return true
		}
	}
	return false
}

// Result holds the continuous-assessment and exam scores for one attempt.
type Result struct {
	ID            string       `db:"id" json:"id"`
	StudentID     string       `db:"student_id" json:"student_id"`
	CourseID      string       `db:"course_id" json:"course_id"`
	YearSubmitted int          `db:"year_submitted" json:"year_submitted"`
	CA1           int          `db:"ca_1" json:"ca_1"`
	CA2           int          `db:"ca_2" json:"ca_2"`
	CA3           int          `db:"ca_3" json:"ca_3"`
	Exam          int          `db:"exam" json:"exam"`
	Status        ResultStatus `db:"result_status" json:"result_status"`
	Version       int          `db:"version" json:"version"`
}

// Score caps.
const (
	MaxCAScore   = 10
	MaxExamScore = 70
)

// Total is the sum of all assessments bounded to 0-100.
func (r Result) Total() int {
	return clamp(r.CA1, MaxCAScore) + clamp(r.CA2, MaxCAScore) + clamp(r.CA3, MaxCAScore) + clamp(r.Exam, MaxExamScore)
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// ResultScope selects the result rows a transition applies to.
type ResultScope struct {
	GroupID    string
	StudentSet int
	Year       int
	Semester   int
	CourseID   string
}
