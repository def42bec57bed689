package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
)

type invalidationRecorder struct {
	calls int
}

func (r *invalidationRecorder) Invalidate(context.Context, string, int) error {
	r.calls++
	return nil
}

// staleResults hands out rows with an outdated version, as if another writer got there first.
type staleResults struct{ memResults }

func (s staleResults) ListForScope(ctx context.Context, scope models.ResultScope) ([]models.Result, error) {
	rows, err := s.memResults.ListForScope(ctx, scope)
	for i := range rows {
		rows[i].Version--
	}
	return rows, err
}

type lifecycleFixture struct {
	store       *memStore
	notifier    *recordingNotifier
	invalidated *invalidationRecorder
	svc         *ResultLifecycleService
}

func newLifecycleFixture(store *memStore, results scopedResults) *lifecycleFixture {
	if results == nil {
		results = memResults{store}
	}
	f := &lifecycleFixture{store: store, notifier: &recordingNotifier{}, invalidated: &invalidationRecorder{}}
	f.svc = NewResultLifecycleService(memRegistrations{store}, results, memCourses{store}, memGroups{store}, memUsers{store}, f.notifier, f.invalidated, NewMetricsService(), nil)
	return f
}

// seedCohort registers n students on each course with results in status.
func seedCohort(store *memStore, n int, status models.ResultStatus, courses ...string) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("s%02d", i)
		store.addStudent(id)
		for _, c := range courses {
			store.register(id, c, 2019, true)
			store.addResult(id, c, 2019, 10, 10, 10, 50, status)
		}
	}
}

func cohortRequest() TransitionRequest {
	return TransitionRequest{Scope: models.ResultScope{GroupID: testGroup, StudentSet: testSet, Year: 2019, Semester: 1}}
}

func assertConflict(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStateConflict)
	assert.Equal(t, message, appErrors.FromError(err).Message)
}

func TestSubmitRefusesPartialCohort(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	seedCohort(store, 9, models.ResultSubmitted, "c1")
	store.addStudent("s09")
	store.register("s09", "c1", 2019, true)
	store.addResult("s09", "c1", 2019, 10, 10, 10, 50, models.ResultDraft)
	f := newLifecycleFixture(store, nil)

	outcome, err := f.svc.Submit(context.Background(), cohortRequest())

	assertConflict(t, err, msgSubmitPending)
	assert.Nil(t, outcome)
	for i := 0; i < 9; i++ {
		assert.Equal(t, models.ResultSubmitted, store.statusOf(fmt.Sprintf("s%02d", i), "c1"))
	}
	assert.Equal(t, models.ResultDraft, store.statusOf("s09", "c1"))
	assert.Empty(t, f.notifier.sent)
	assert.Zero(t, f.invalidated.calls)
}

func TestSubmitRefusesMissingResult(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	seedCohort(store, 3, models.ResultSubmitted, "c1")
	store.addStudent("s03")
	store.register("s03", "c1", 2019, true)
	f := newLifecycleFixture(store, nil)

	_, err := f.svc.Submit(context.Background(), cohortRequest())

	assertConflict(t, err, msgSubmitPending)
	assert.Equal(t, models.ResultSubmitted, store.statusOf("s00", "c1"))
}

func TestSubmitRefusesDuplicateResults(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	seedCohort(store, 3, models.ResultSubmitted, "c1")
	store.addResult("s01", "c1", 2019, 9, 9, 9, 40, models.ResultSubmitted)
	f := newLifecycleFixture(store, nil)

	outcome, err := f.svc.Submit(context.Background(), cohortRequest())

	assertConflict(t, err, msgDuplicate)
	assert.Nil(t, outcome)
	require.Len(t, store.results, 4)
	for _, r := range store.results {
		assert.Equal(t, models.ResultSubmitted, r.Status)
		assert.Equal(t, 1, r.Version)
	}
	assert.Empty(t, f.notifier.sent)
	assert.Zero(t, f.invalidated.calls)
}

func TestSubmitMovesCohortAndNotifiesAdministrators(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.addCourse("c2", "CSC103", 2, 100, 1, models.CourseTypeCore)
	seedCohort(store, 10, models.ResultSubmitted, "c1", "c2")
	f := newLifecycleFixture(store, nil)
	req := cohortRequest()
	req.Message = "please review"

	outcome, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, &TransitionOutcome{Transition: models.TransitionOfficerSubmit, Affected: 20, Notified: 2}, outcome)
	for _, r := range store.results {
		assert.Equal(t, models.ResultOfficerApproved, r.Status)
		assert.Equal(t, 2, r.Version)
	}
	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, "admin-1", f.notifier.sent[0].recipient)
	assert.Equal(t, "The results for Computer Science in the faculty of Science have been submitted.", f.notifier.sent[0].message)
	assert.Equal(t, "please review", f.notifier.sent[0].detail)
	assert.Equal(t, 1, f.invalidated.calls)
}

func TestSubmitIgnoresOtherSemesters(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.addCourse("c2", "CSC102", 3, 100, 2, models.CourseTypeCore)
	seedCohort(store, 2, models.ResultSubmitted, "c1")
	store.register("s00", "c2", 2019, true)
	f := newLifecycleFixture(store, nil)

	outcome, err := f.svc.Submit(context.Background(), cohortRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Affected)
}

func TestSubmitWithEmptyScope(t *testing.T) {
	f := newLifecycleFixture(newMemStore(), nil)

	_, err := f.svc.Submit(context.Background(), cohortRequest())

	assertConflict(t, err, msgNothingInScope)
}

func TestSubmitUnknownGroup(t *testing.T) {
	f := newLifecycleFixture(newMemStore(), nil)
	req := cohortRequest()
	req.Scope.GroupID = "missing"

	_, err := f.svc.Submit(context.Background(), req)

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestApproveNotifiesEachStudentOnce(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.addCourse("c2", "CSC103", 2, 100, 1, models.CourseTypeCore)
	seedCohort(store, 3, models.ResultOfficerApproved, "c1", "c2")
	f := newLifecycleFixture(store, nil)

	outcome, err := f.svc.Approve(context.Background(), cohortRequest())
	require.NoError(t, err)

	assert.Equal(t, 6, outcome.Affected)
	assert.Equal(t, 3, outcome.Notified)
	recipients := map[string]int{}
	for _, n := range f.notifier.sent {
		recipients[n.recipient]++
	}
	assert.Equal(t, map[string]int{"s00": 1, "s01": 1, "s02": 1}, recipients)
	for _, r := range store.results {
		assert.Equal(t, models.ResultFinal, r.Status)
	}
}

func TestApproveRefusesUnreviewedResults(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	seedCohort(store, 2, models.ResultOfficerApproved, "c1")
	store.addStudent("s02")
	store.register("s02", "c1", 2019, true)
	store.addResult("s02", "c1", 2019, 10, 10, 10, 50, models.ResultSubmitted)
	f := newLifecycleFixture(store, nil)

	_, err := f.svc.Approve(context.Background(), cohortRequest())

	assertConflict(t, err, msgApprovePending)
	assert.Equal(t, models.ResultOfficerApproved, store.statusOf("s00", "c1"))
	assert.Empty(t, f.notifier.sent)
}

func TestTransitionLosesRaceWithConcurrentWriter(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	seedCohort(store, 4, models.ResultSubmitted, "c1")
	f := newLifecycleFixture(store, staleResults{memResults{store}})

	_, err := f.svc.Submit(context.Background(), cohortRequest())

	assertConflict(t, err, msgStale)
	for _, r := range store.results {
		assert.Equal(t, models.ResultSubmitted, r.Status)
	}
	assert.Empty(t, f.notifier.sent)
}

func TestOfficerRejectRequiresCourse(t *testing.T) {
	f := newLifecycleFixture(newMemStore(), nil)

	_, err := f.svc.OfficerReject(context.Background(), cohortRequest())

	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestOfficerRejectReturnsCourseToLecturer(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.addCourse("c2", "CSC103", 2, 100, 1, models.CourseTypeCore)
	seedCohort(store, 3, models.ResultSubmitted, "c1", "c2")
	f := newLifecycleFixture(store, nil)
	req := cohortRequest()
	req.Scope.CourseID = "c1"

	outcome, err := f.svc.OfficerReject(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, outcome.Affected)
	assert.Equal(t, models.ResultDraft, store.statusOf("s00", "c1"))
	assert.Equal(t, models.ResultSubmitted, store.statusOf("s00", "c2"))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "lect-1", f.notifier.sent[0].recipient)
}

func TestOfficerRejectWithNothingToMove(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	seedCohort(store, 2, models.ResultOfficerApproved, "c1")
	f := newLifecycleFixture(store, nil)
	req := cohortRequest()
	req.Scope.CourseID = "c1"

	_, err := f.svc.OfficerReject(context.Background(), req)

	assertConflict(t, err, msgNothingToMove)
}

func TestAdminRejectCohortNotifiesOfficer(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	seedCohort(store, 2, models.ResultFinal, "c1")
	f := newLifecycleFixture(store, nil)

	outcome, err := f.svc.AdminReject(context.Background(), cohortRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Affected)
	assert.Equal(t, models.ResultSubmitted, store.statusOf("s01", "c1"))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "officer-1", f.notifier.sent[0].recipient)
}

func TestAdminRejectCourseScope(t *testing.T) {
	store := newMemStore()
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.addCourse("c2", "CSC103", 2, 100, 1, models.CourseTypeCore)
	seedCohort(store, 2, models.ResultOfficerApproved, "c1", "c2")
	f := newLifecycleFixture(store, nil)
	req := cohortRequest()
	req.Scope.CourseID = "c2"

	outcome, err := f.svc.AdminReject(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Affected)
	assert.Equal(t, models.ResultOfficerApproved, store.statusOf("s00", "c1"))
	assert.Equal(t, models.ResultSubmitted, store.statusOf("s00", "c2"))
	assert.Equal(t, "lect-1", f.notifier.sent[0].recipient)
}
