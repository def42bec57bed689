package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/internal/repository"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
)

const (
	testGroup = "grp-csc"
	testSet   = 2019
)

// memStore backs the fake repositories used across service tests.
type memStore struct {
	mu        sync.RWMutex
	students  []models.Student
	groups    map[string]models.Group
	courses   map[string]models.Course
	bindings  []models.CourseBinding
	regs      []models.Registration
	results   []models.Result
	options   map[string]*models.GroupOptions
	appYear   int
	users     []models.User
	failReads error
}

func newMemStore() *memStore {
	lecturer := "lect-1"
	officer := "officer-1"
	return &memStore{
		groups: map[string]models.Group{
			testGroup: {ID: testGroup, Faculty: "Science", Department: "Computer Science", GroupAdminID: &officer, Active: true},
		},
		courses: map[string]models.Course{},
		options: map[string]*models.GroupOptions{
			optionsKey(testGroup, testSet): {ID: "opt-1", GroupID: testGroup, Set: testSet, GradeSystem: "5-point"},
		},
		appYear: 2019,
		users: []models.User{
			{ID: "admin-1", Role: models.RoleAdministrator, Active: true},
			{ID: "admin-2", Role: models.RoleAdministrator, Active: true},
			{ID: lecturer, Role: models.RoleLecturer, Active: true},
		},
	}
}

func optionsKey(group string, set int) string {
	return fmt.Sprintf("%s:%d", group, set)
}

func (m *memStore) addStudent(id string) models.Student {
	s := models.Student{ID: id, Matric: strings.ToUpper(id), Name: "Student " + id, GroupID: testGroup, StudentSet: testSet, EntryYear: testSet, Active: true}
	m.students = append(m.students, s)
	return s
}

func (m *memStore) addCourse(id, code string, units, level, semester int, kind models.CourseType) models.Course {
	lecturer := "lect-1"
	c := models.Course{ID: id, Code: code, Units: units, Level: level, Semester: semester, GroupID: testGroup, LecturerID: &lecturer, Active: true}
	m.courses[id] = c
	if kind != "" {
		m.bindings = append(m.bindings, models.CourseBinding{ID: "b-" + id, GroupID: testGroup, StudentSet: testSet, CourseType: kind, Active: true, Course: c})
	}
	return c
}

func (m *memStore) register(studentID, courseID string, year int, active bool) {
	c := m.courses[courseID]
	m.regs = append(m.regs, models.Registration{
		ID: studentID + courseID, StudentID: studentID, CourseID: courseID, YearRegistered: year,
		RegStatus: active, CourseCode: c.Code, Semester: c.Semester, Units: c.Units,
	})
}

func (m *memStore) addResult(studentID, courseID string, year int, ca1, ca2, ca3, exam int, status models.ResultStatus) {
	m.results = append(m.results, models.Result{
		ID:            fmt.Sprintf("res-%s-%s-%d", studentID, courseID, year),
		StudentID:     studentID,
		CourseID:      courseID,
		YearSubmitted: year,
		CA1:           ca1,
		CA2:           ca2,
		CA3:           ca3,
		Exam:          exam,
		Status:        status,
		Version:       1,
	})
}

func (m *memStore) statusOf(studentID, courseID string) models.ResultStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.results {
		if r.StudentID == studentID && r.CourseID == courseID {
			return r.Status
		}
	}
	return 0
}

func (m *memStore) inCohort(studentID string, scope models.ResultScope) bool {
	for _, s := range m.students {
		if s.ID == studentID {
			return s.GroupID == scope.GroupID && s.StudentSet == scope.StudentSet && s.EntryYear <= scope.Year
		}
	}
	return false
}

func hasStatus(statuses []models.ResultStatus, s models.ResultStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

type memStudents struct{ *memStore }

func (m memStudents) ListByCohort(_ context.Context, f models.CohortFilter) ([]models.Student, error) {
	if m.failReads != nil {
		return nil, m.failReads
	}
	var out []models.Student
	for _, s := range m.students {
		if s.GroupID == f.GroupID && s.StudentSet == f.StudentSet && s.EntryYear <= f.Year {
			out = append(out, s)
		}
	}
	return out, nil
}

type memGroups struct{ *memStore }

func (m memGroups) FindByID(_ context.Context, id string) (*models.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

type memCourses struct{ *memStore }

func (m memCourses) FindByID(_ context.Context, id string) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m memCourses) ListBindings(_ context.Context, f models.BindingFilter) ([]models.CourseBinding, error) {
	var out []models.CourseBinding
	for _, b := range m.bindings {
		if b.GroupID != f.GroupID || b.StudentSet != f.StudentSet {
			continue
		}
		if f.CourseType != "" && b.CourseType != f.CourseType {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type memRegistrations struct{ *memStore }

func (m memRegistrations) List(_ context.Context, f models.RegistrationFilter) ([]models.Registration, error) {
	if m.failReads != nil {
		return nil, m.failReads
	}
	var out []models.Registration
	for _, r := range m.regs {
		if f.StudentID != "" && r.StudentID != f.StudentID {
			continue
		}
		if f.CourseID != "" && r.CourseID != f.CourseID {
			continue
		}
		if f.Year > 0 && r.YearRegistered != f.Year {
			continue
		}
		if f.Semester > 0 && r.Semester != f.Semester {
			continue
		}
		if f.Registered != nil && r.RegStatus != *f.Registered {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m memRegistrations) ListForScope(_ context.Context, scope models.ResultScope) ([]models.Registration, error) {
	var out []models.Registration
	for _, r := range m.regs {
		if !r.RegStatus || r.YearRegistered != scope.Year || r.Semester != scope.Semester || !m.inCohort(r.StudentID, scope) {
			continue
		}
		if scope.CourseID != "" && r.CourseID != scope.CourseID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type memResults struct{ *memStore }

func (m memResults) FindOne(_ context.Context, studentID, courseID string, year int, statuses []models.ResultStatus) (*models.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.results {
		if r.StudentID == studentID && r.CourseID == courseID && r.YearSubmitted == year && hasStatus(statuses, r.Status) {
			res := r
			return &res, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memResults) ListByStudentCourse(_ context.Context, studentID, courseID string, statuses []models.ResultStatus) ([]models.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Result
	for _, r := range m.results {
		if r.StudentID == studentID && r.CourseID == courseID && hasStatus(statuses, r.Status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memResults) ListForScope(_ context.Context, scope models.ResultScope) ([]models.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Result
	for _, r := range m.results {
		if r.YearSubmitted != scope.Year || m.courses[r.CourseID].Semester != scope.Semester || !m.inCohort(r.StudentID, scope) {
			continue
		}
		if scope.CourseID != "" && r.CourseID != scope.CourseID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m memResults) Transition(_ context.Context, rows []models.Result, rule models.TransitionRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := make(map[string]int, len(m.results))
	for i, r := range m.results {
		index[r.ID] = i
	}
	for _, row := range rows {
		i, ok := index[row.ID]
		if !ok || m.results[i].Version != row.Version || !rule.Allows(m.results[i].Status) {
			return repository.ErrStaleResults
		}
	}
	for _, row := range rows {
		i := index[row.ID]
		m.results[i].Status = rule.To
		m.results[i].Version++
	}
	return nil
}

type memOptions struct{ *memStore }

func (m memOptions) FindGroupOptions(_ context.Context, groupID string, set int) (*models.GroupOptions, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	opts, ok := m.options[optionsKey(groupID, set)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *opts
	return &cp, nil
}

func (m memOptions) CreateGroupOptions(_ context.Context, opts *models.GroupOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := optionsKey(opts.GroupID, opts.Set)
	if _, exists := m.options[key]; !exists {
		cp := *opts
		cp.ID = "opt-" + opts.GroupID
		m.options[key] = &cp
	}
	return nil
}

func (m memOptions) UpdateGroupOptions(_ context.Context, opts *models.GroupOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *opts
	m.options[optionsKey(opts.GroupID, opts.Set)] = &cp
	return nil
}

func (m memOptions) GetAppOptions(_ context.Context) (*models.AppOptions, error) {
	if m.appYear == 0 {
		return nil, sql.ErrNoRows
	}
	return &models.AppOptions{AcademicYear: m.appYear}, nil
}

type memUsers struct{ *memStore }

func (m memUsers) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type sentNotification struct {
	recipient string
	message   string
	detail    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(_ context.Context, recipientID, message, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{recipient: recipientID, message: message, detail: detail})
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed, nil
}

type engine struct {
	store    *memStore
	options  *GroupOptionsService
	resolver *RegistrationResolver
	term     *TermAggregator
	history  *HistoryAggregator
	reports  *ReportService
}

func newEngine(store *memStore, cache *CacheService) *engine {
	options := NewGroupOptionsService(memOptions{store}, nil, nil, 2019)
	resolver := NewRegistrationResolver(memRegistrations{store}, memResults{store})
	term := NewTermAggregator(resolver, options)
	history := NewHistoryAggregator(memCourses{store}, resolver, options)
	reports := NewReportService(memStudents{store}, memCourses{store}, resolver, term, history, options, cache, NewMetricsService(), nil, ReportServiceConfig{StudentConcurrency: 2})
	return &engine{store: store, options: options, resolver: resolver, term: term, history: history, reports: reports}
}
