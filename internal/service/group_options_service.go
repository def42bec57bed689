package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
	"github.com/mhizterkeyz/resultify-api/pkg/grading"
)

type groupOptionsRepo interface {
	FindGroupOptions(ctx context.Context, groupID string, set int) (*models.GroupOptions, error)
	CreateGroupOptions(ctx context.Context, opts *models.GroupOptions) error
	UpdateGroupOptions(ctx context.Context, opts *models.GroupOptions) error
	GetAppOptions(ctx context.Context) (*models.AppOptions, error)
}

// UpdateGroupOptionsRequest carries the editable option fields. Nil fields are left unchanged.
type UpdateGroupOptionsRequest struct {
	GradeSystem *string `json:"grade_system" validate:"omitempty,gradesystem"`
	Levels      *int    `json:"levels" validate:"omitempty,min=1,max=10"`
	RegCap      *int    `json:"reg_cap" validate:"omitempty,min=1"`
	RegNorm     *int    `json:"reg_norm" validate:"omitempty,min=1"`
	RegMin      *int    `json:"reg_min" validate:"omitempty,min=0"`
}

// GroupOptionsService manages per group-set grading configuration and resolves grading scales.
type GroupOptionsService struct {
	repo         groupOptionsRepo
	validator    *validator.Validate
	logger       *zap.Logger
	academicYear int
}

// NewGroupOptionsService constructs the service. fallbackYear is used when no
// application options row exists.
func NewGroupOptionsService(repo groupOptionsRepo, validate *validator.Validate, logger *zap.Logger, fallbackYear int) *GroupOptionsService {
	if validate == nil {
		validate = validator.New()
	}
	RegisterGradeSystemValidation(validate)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupOptionsService{repo: repo, validator: validate, logger: logger, academicYear: fallbackYear}
}

// RegisterGradeSystemValidation adds the "gradesystem" tag to v.
func RegisterGradeSystemValidation(v *validator.Validate) {
	_ = v.RegisterValidation("gradesystem", func(fl validator.FieldLevel) bool {
		return grading.IsValid(fl.Field().String())
	})
}

// Get returns the options of a group set, creating defaults on first access.
func (s *GroupOptionsService) Get(ctx context.Context, groupID string, set int) (*models.GroupOptions, error) {
	opts, err := s.repo.FindGroupOptions(ctx, groupID, set)
	if err == nil {
		return opts, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to load group options")
	}

	created := &models.GroupOptions{
		GroupID: groupID,
		Set:     set,
		Levels:  models.DefaultLevels,
		RegCap:  models.DefaultRegCap,
		RegNorm: models.DefaultRegNorm,
		RegMin:  models.DefaultRegMin,
	}
	if err := s.repo.CreateGroupOptions(ctx, created); err != nil {
		return nil, appErrors.Internal(err, "failed to initialise group options")
	}
	s.logger.Info("group options initialised", zap.String("group_id", groupID), zap.Int("set", set))

	// a concurrent first read may have won the insert
	opts, err = s.repo.FindGroupOptions(ctx, groupID, set)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load group options")
	}
	return opts, nil
}

// Update applies req to the options of a group set.
func (s *GroupOptionsService) Update(ctx context.Context, groupID string, set int, req UpdateGroupOptionsRequest) (*models.GroupOptions, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group options payload")
	}
	opts, err := s.Get(ctx, groupID, set)
	if err != nil {
		return nil, err
	}
	if req.GradeSystem != nil {
		scale, _ := grading.Validate(*req.GradeSystem)
		opts.GradeSystem = string(scale.System)
	}
	if req.Levels != nil {
		opts.Levels = *req.Levels
	}
	if req.RegCap != nil {
		opts.RegCap = *req.RegCap
	}
	if req.RegNorm != nil {
		opts.RegNorm = *req.RegNorm
	}
	if req.RegMin != nil {
		opts.RegMin = *req.RegMin
	}
	if opts.RegMin > opts.RegNorm || opts.RegNorm > opts.RegCap {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reg_min <= reg_norm <= reg_cap must hold")
	}
	if err := s.repo.UpdateGroupOptions(ctx, opts); err != nil {
		return nil, appErrors.Internal(err, "failed to update group options")
	}
	return opts, nil
}

// ScaleFor resolves the grading scale configured for a group set. ok is false
// when the set has no options or an unrecognised grade system.
func (s *GroupOptionsService) ScaleFor(ctx context.Context, groupID string, set int) (grading.Scale, bool, error) {
	opts, err := s.repo.FindGroupOptions(ctx, groupID, set)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.Scale{}, false, nil
		}
		return grading.Scale{}, false, appErrors.Internal(err, "failed to load group options")
	}
	scale, err := grading.Validate(opts.GradeSystem)
	if err != nil {
		s.logger.Warn("group options carry an unknown grade system",
			zap.String("group_id", groupID), zap.Int("set", set), zap.String("grade_system", opts.GradeSystem))
		return grading.Scale{}, false, nil
	}
	return scale, true, nil
}

// AcademicYear returns the configured current academic year.
func (s *GroupOptionsService) AcademicYear(ctx context.Context) (int, error) {
	opts, err := s.repo.GetAppOptions(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.academicYear, nil
		}
		return 0, appErrors.Internal(err, "failed to load application options")
	}
	if opts.AcademicYear <= 0 {
		return s.academicYear, nil
	}
	return opts.AcademicYear, nil
}
