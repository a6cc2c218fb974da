package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/listing"
	"github.com/noah-isme/course-enrollment-portal/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
	"github.com/noah-isme/course-enrollment-portal/pkg/validation"
)

// Course form messages.
const (
	MsgDuplicateCourseName = "duplicate name"
	MsgCourseNotFound      = "course not found"
)

type courseGateway interface {
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, input models.CourseInput) (*models.Course, error)
	Update(ctx context.Context, id int64, input models.CourseInput) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
}

// CourseResult is the outcome of a course command. Courses is the refreshed,
// deduplicated collection.
type CourseResult struct {
	State   models.CourseFormState
	Course  *models.Course
	Courses []models.Course
}

// CourseService validates and submits the course form.
type CourseService struct {
	gateway   courseGateway
	validator *validation.Validator
	audit     auditRecorder
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(gateway courseGateway, validate *validation.Validator, audit auditRecorder, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{gateway: gateway, validator: validate, audit: audit, logger: logger}
}

// List loads and deduplicates the course collection.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.gateway.List(ctx)
	if err != nil {
		return nil, err
	}
	return listing.DedupeCourses(courses), nil
}

// Validate runs the local course checks against existing. It never calls the
// gateway.
func (s *CourseService) Validate(state models.CourseFormState, input models.CourseInput, existing []models.Course) error {
	msg, err := s.validator.Check(input)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course")
	}
	if msg != "" {
		return appErrors.Validation(msg)
	}
	editingID, _ := state.Editing()
	if listing.HasDuplicateName(existing, input.CourseName, editingID) {
		return appErrors.Validation(MsgDuplicateCourseName)
	}
	return nil
}

// Submit creates the course when state is idle or updates the course being
// edited. On success the form returns to idle and the collection is
// refreshed. When only the refresh fails, the result is returned together
// with the error.
func (s *CourseService) Submit(ctx context.Context, state models.CourseFormState, input models.CourseInput, existing []models.Course) (*CourseResult, error) {
	if err := s.Validate(state, input, existing); err != nil {
		return nil, err
	}
	input.CourseName = strings.TrimSpace(input.CourseName)

	var (
		course *models.Course
		err    error
		action = models.AuditActionCourseCreate
	)
	if id, editing := state.Editing(); editing {
		action = models.AuditActionCourseUpdate
		course, err = s.gateway.Update(ctx, id, input)
	} else {
		course, err = s.gateway.Create(ctx, input)
	}
	if err != nil {
		s.logger.Warn("course submit rejected", zap.String("action", action), zap.Error(err))
		return nil, err
	}
	recordAudit(ctx, s.audit, action, "course", course.ID, input)

	result := &CourseResult{State: models.IdleCourseForm(), Course: course}
	result.Courses, err = s.List(ctx)
	return result, err
}

// BeginEdit loads course id from courses into the form.
func (s *CourseService) BeginEdit(courses []models.Course, id int64) (models.CourseFormState, error) {
	course, ok := listing.FindCourse(courses, id)
	if !ok {
		return models.IdleCourseForm(), appErrors.Clone(appErrors.ErrNotFound, MsgCourseNotFound)
	}
	return models.EditingCourseForm(course), nil
}

// Cancel discards the edit in progress.
func (s *CourseService) Cancel() models.CourseFormState {
	return models.IdleCourseForm()
}

// Delete removes course id. Deleting the course being edited returns the
// form to idle; otherwise state is kept.
func (s *CourseService) Delete(ctx context.Context, state models.CourseFormState, id int64) (*CourseResult, error) {
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.logger.Warn("course delete rejected", zap.Int64("course_id", id), zap.Error(err))
		return nil, err
	}
	recordAudit(ctx, s.audit, models.AuditActionCourseDelete, "course", id, nil)

	if editingID, editing := state.Editing(); editing && editingID == id {
		state = models.IdleCourseForm()
	}
	result := &CourseResult{State: state}
	var err error
	result.Courses, err = s.List(ctx)
	return result, err
}
