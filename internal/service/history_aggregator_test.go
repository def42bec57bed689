package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhizterkeyz/resultify-api/internal/models"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 100, LevelFor(2020, 2020))
	assert.Equal(t, 300, LevelFor(2020, 2018))
}

func TestCumulativeCourses(t *testing.T) {
	bindings := []models.CourseBinding{
		{Course: models.Course{ID: "a", Level: 100, Semester: 2}},
		{Course: models.Course{ID: "b", Level: 200, Semester: 1}},
		{Course: models.Course{ID: "c", Level: 200, Semester: 2}},
		{Course: models.Course{ID: "d", Level: 300, Semester: 1}},
	}

	got := CumulativeCourses(bindings, 200, 1)

	ids := make([]string, 0, len(got))
	for _, b := range got {
		ids = append(ids, b.Course.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestHistoryAggregatorCountsBestAttemptOnce(t *testing.T) {
	store := newMemStore()
	student := store.addStudent("s1")
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.register("s1", "c1", 2019, true)
	store.register("s1", "c1", 2020, true)
	store.addResult("s1", "c1", 2019, 5, 5, 5, 15, models.ResultFinal)
	store.addResult("s1", "c1", 2020, 10, 10, 5, 40, models.ResultFinal)
	e := newEngine(store, nil)

	hist, err := e.history.Aggregate(context.Background(), student, Term{Year: 2020, Semester: 1}, 2020, officerStatuses)
	require.NoError(t, err)

	assert.Equal(t, models.TermTotals{TCR: 3, TCE: 3, TGP: 12}, hist.Totals)
	assert.Empty(t, hist.Remarks)
	assert.Equal(t, 4.0, hist.Totals.GPA())
}

func TestHistoryAggregatorRemarksOutstandingCoreCourses(t *testing.T) {
	store := newMemStore()
	student := store.addStudent("s1")
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.addCourse("c2", "CSC103", 2, 100, 1, models.CourseTypeCore)
	store.addCourse("c3", "GST101", 2, 100, 1, models.CourseTypeElective)
	store.addCourse("c4", "CSC102", 3, 100, 2, models.CourseTypeCore)
	store.register("s1", "c1", 2019, true)
	store.addResult("s1", "c1", 2019, 5, 5, 5, 15, models.ResultFinal)
	e := newEngine(store, nil)

	hist, err := e.history.Aggregate(context.Background(), student, Term{Year: 2019, Semester: 1}, 2019, officerStatuses)
	require.NoError(t, err)

	// CSC101 was failed, CSC103 never registered, GST101 is elective, CSC102 is after the cutoff
	assert.Equal(t, []string{"CSC101", "CSC103"}, hist.Remarks)
	assert.Equal(t, models.TermTotals{TCR: 3}, hist.Totals)
}

func TestHistoryAggregatorIgnoresAttemptsAfterCutoff(t *testing.T) {
	store := newMemStore()
	student := store.addStudent("s1")
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.register("s1", "c1", 2019, true)
	store.register("s1", "c1", 2020, true)
	store.addResult("s1", "c1", 2019, 5, 5, 5, 15, models.ResultFinal)
	store.addResult("s1", "c1", 2020, 10, 10, 10, 60, models.ResultFinal)
	e := newEngine(store, nil)

	hist, err := e.history.Aggregate(context.Background(), student, Term{Year: 2019, Semester: 1}, 2019, officerStatuses)
	require.NoError(t, err)

	assert.Equal(t, models.TermTotals{TCR: 3}, hist.Totals)
	assert.Equal(t, []string{"CSC101"}, hist.Remarks)
}
