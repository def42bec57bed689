package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
)

type studentLister interface {
	ListByCohort(ctx context.Context, filter models.CohortFilter) ([]models.Student, error)
}

type academicYearSource interface {
	AcademicYear(ctx context.Context) (int, error)
}

// ReportServiceConfig tunes report computation.
type ReportServiceConfig struct {
	StudentConcurrency int
	CacheTTL           time.Duration
}

// ReportService assembles cohort term reports.
type ReportService struct {
	students    studentLister
	bindings    bindingReader
	resolver    *RegistrationResolver
	term        *TermAggregator
	history     *HistoryAggregator
	years       academicYearSource
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	concurrency int
	cacheTTL    time.Duration

	// generations counts invalidations per group set; a report computed
	// across an invalidation is never left in the cache.
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewReportService wires the report engine. cache and metrics may be nil.
func NewReportService(
	students studentLister,
	bindings bindingReader,
	resolver *RegistrationResolver,
	term *TermAggregator,
	history *HistoryAggregator,
	years academicYearSource,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ReportServiceConfig,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StudentConcurrency <= 0 {
		cfg.StudentConcurrency = 4
	}
	return &ReportService{
		students:    students,
		bindings:    bindings,
		resolver:    resolver,
		term:        term,
		history:     history,
		years:       years,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		concurrency: cfg.StudentConcurrency,
		cacheTTL:    cfg.CacheTTL,
		generations: make(map[string]uint64),
	}
}

// ComputeCohortReport builds the report of every student in the cohort for the
// queried term. Any per-student failure fails the whole report.
func (s *ReportService) ComputeCohortReport(ctx context.Context, q models.CohortQuery) (*models.CohortReport, error) {
	if q.View == "" {
		q.View = models.ReportViewOfficer
	}
	key := CohortReportKey(q)
	var cached models.CohortReport
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	gen := s.generation(q.GroupID, q.StudentSet)
	start := time.Now()
	baseYear, err := s.years.AcademicYear(ctx)
	if err != nil {
		return nil, err
	}
	level := LevelFor(baseYear, q.Year)

	students, err := s.students.ListByCohort(ctx, models.CohortFilter{GroupID: q.GroupID, StudentSet: q.StudentSet, Year: q.Year})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load students")
	}
	core, err := s.termBindings(ctx, q, models.CourseTypeCore, level)
	if err != nil {
		return nil, err
	}
	electives, err := s.termBindings(ctx, q, models.CourseTypeElective, level)
	if err != nil {
		return nil, err
	}

	report := &models.CohortReport{
		Query:     q,
		Level:     level,
		Core:      core,
		Electives: electives,
		Results:   make([]models.StudentReport, len(students)),
	}
	coreCourses := models.Courses(core)
	electiveCourses := models.Courses(electives)
	term := Term{Year: q.Year, Semester: q.Semester}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(s.concurrency)
	for i, student := range students {
		i, student := i, student
		p.Go(func(ctx context.Context) error {
			r, err := s.studentReport(ctx, student, coreCourses, electiveCourses, term, baseYear, q.View.Statuses())
			if err != nil {
				return err
			}
			report.Results[i] = r
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		s.logger.Error("cohort report failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.metrics.ObserveReport(q.View, len(students), time.Since(start))
	s.store(ctx, key, report, q, gen)
	return report, nil
}

// store caches report unless the group set was invalidated after gen was read.
// The generation is checked again after the write so an invalidation racing
// the write removes it.
func (s *ReportService) store(ctx context.Context, key string, report *models.CohortReport, q models.CohortQuery, gen uint64) {
	if !s.cache.Enabled() || s.generation(q.GroupID, q.StudentSet) != gen {
		return
	}
	if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
		s.logger.Debug("cohort report not cached", zap.String("key", key), zap.Error(err))
		return
	}
	if s.generation(q.GroupID, q.StudentSet) != gen {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.logger.Warn("stale cohort report left in cache", zap.String("key", key), zap.Error(err))
		}
	}
}

// Invalidate drops cached reports of a group set, including reports still
// being computed when it is called.
func (s *ReportService) Invalidate(ctx context.Context, groupID string, set int) error {
	s.genMu.Lock()
	s.generations[generationKey(groupID, set)]++
	s.genMu.Unlock()
	return s.cache.Invalidate(ctx, CohortReportPattern(groupID, set))
}

func (s *ReportService) generation(groupID string, set int) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[generationKey(groupID, set)]
}

func generationKey(groupID string, set int) string {
	return fmt.Sprintf("%s:%d", groupID, set)
}

func (s *ReportService) termBindings(ctx context.Context, q models.CohortQuery, kind models.CourseType, level int) ([]models.CourseBinding, error) {
	all, err := s.bindings.ListBindings(ctx, models.BindingFilter{GroupID: q.GroupID, StudentSet: q.StudentSet, CourseType: kind})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load cohort courses")
	}
	out := make([]models.CourseBinding, 0, len(all))
	for _, b := range all {
		if b.Course.Semester == q.Semester && b.Course.Level == level {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *ReportService) studentReport(ctx context.Context, student models.Student, core, electives []models.Course, term Term, baseYear int, statuses []models.ResultStatus) (models.StudentReport, error) {
	registered, err := s.resolver.Registered(ctx, student.ID, term)
	if err != nil {
		return models.StudentReport{}, err
	}

	var coreRes, electiveRes, carryRes models.TermResult
	var hist models.HistoryResult
	current := append(append(make([]models.Course, 0, len(core)+len(electives)), core...), electives...)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		coreRes, err = s.term.Aggregate(ctx, student, core, registered, term, statuses)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		electiveRes, err = s.term.Aggregate(ctx, student, electives, registered, term, statuses)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		carryRes, err = s.term.Carryovers(ctx, student, current, registered, term, statuses)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		hist, err = s.history.Aggregate(ctx, student, term, baseYear, statuses)
		return err
	})
	if err := p.Wait(); err != nil {
		return models.StudentReport{}, err
	}

	totals := coreRes.Totals.Add(electiveRes.Totals).Add(carryRes.Totals)
	return models.StudentReport{
		StudentID:  student.ID,
		Matric:     student.Matric,
		Name:       student.Name,
		Core:       coreRes.Rows,
		Electives:  electiveRes.Rows,
		Carryovers: carryRes.Rows,
		TCE:        totals.TCE,
		TCR:        totals.TCR,
		TGP:        models.Round2(totals.TGP),
		GPA:        totals.GPA(),
		Previous:   models.StandingOf(hist.Totals.Sub(totals)),
		CGPA:       hist.Totals.GPA(),
		Remarks:    hist.Remarks,
	}, nil
}
