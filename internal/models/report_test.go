package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRowsJSON(t *testing.T) {
	grade := "A"
	report := StudentReport{
		Core:       RowsOf([]CourseRow{{Course: "CSC101", Units: 3, Score: 76, Grade: &grade, Remark: RemarkPassed, Points: 5}}),
		Electives:  RowsOf(nil),
		Carryovers: NoRegistration(MessageNoCarryovers),
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"electives":[]`)
	assert.Contains(t, string(raw), `"carryovers":"Didn't register any carryovers this semester."`)

	var decoded StudentReport
	require.NoError(t, json.Unmarshal(raw, &decoded))

	rows, ok := decoded.Core.Rows()
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", *rows[0].Grade)

	msg, isMsg := decoded.Carryovers.Message()
	assert.True(t, isMsg)
	assert.Equal(t, MessageNoCarryovers, msg)
}

func TestTermTotalsGPA(t *testing.T) {
	assert.Equal(t, 3.0, TermTotals{TCE: 5, TGP: 15}.GPA())
	assert.Equal(t, 0.0, TermTotals{TCR: 6}.GPA())
	assert.Equal(t, 3.33, TermTotals{TCE: 3, TGP: 10}.GPA())

	prev := TermTotals{TCR: 9, TCE: 6, TGP: 24}.Sub(TermTotals{TCR: 3, TCE: 3, TGP: 15})
	assert.Equal(t, TermTotals{TCR: 6, TCE: 3, TGP: 9}, prev)
}

func TestTransitionRules(t *testing.T) {
	submit, err := TransitionOfficerSubmit.Rule()
	require.NoError(t, err)
	assert.True(t, submit.Allows(ResultSubmitted))
	assert.False(t, submit.Allows(ResultDraft))
	assert.Equal(t, ResultOfficerApproved, submit.To)

	reject, err := TransitionAdminReject.Rule()
	require.NoError(t, err)
	assert.True(t, reject.Allows(ResultFinal))
	assert.Equal(t, ResultSubmitted, reject.To)

	_, err = Transition("publish").Rule()
	assert.Error(t, err)
}

func TestResultTotalIsCapped(t *testing.T) {
	assert.Equal(t, 76, Result{CA1: 8, CA2: 7, CA3: 6, Exam: 55}.Total())
	assert.Equal(t, 100, Result{CA1: 12, CA2: 10, CA3: 10, Exam: 90}.Total())
	assert.Equal(t, []ResultStatus{ResultOfficerApproved, ResultFinal}, ReportViewAdmin.Statuses())
}
