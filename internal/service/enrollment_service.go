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

// Enrollment form messages.
const (
	MsgDuplicateEnrollment  = "duplicate enrollment"
	MsgTransitionNotAllowed = "transition not allowed"
	MsgEnrollmentNotFound   = "enrollment not found"
)

type enrollmentGateway interface {
	List(ctx context.Context) ([]models.Enrollment, error)
	Create(ctx context.Context, input models.EnrollmentInput) (*models.Enrollment, error)
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error)
}

// EnrollmentResult is the outcome of an enrollment command. Enrollments is
// the refreshed collection.
type EnrollmentResult struct {
	Enrollment  *models.Enrollment
	Enrollments []models.Enrollment
}

// EnrollmentService validates the enroll form and drives status transitions.
type EnrollmentService struct {
	gateway   enrollmentGateway
	validator *validation.Validator
	audit     auditRecorder
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(gateway enrollmentGateway, validate *validation.Validator, audit auditRecorder, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{gateway: gateway, validator: validate, audit: audit, logger: logger}
}

// List loads the enrollment collection.
func (s *EnrollmentService) List(ctx context.Context) ([]models.Enrollment, error) {
	return s.gateway.List(ctx)
}

// Validate runs the local enrollment checks. It never calls the gateway.
func (s *EnrollmentService) Validate(input models.EnrollmentInput, existing []models.Enrollment, courses []models.Course) error {
	msg, err := s.validator.Check(input)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if msg != "" {
		return appErrors.Validation(msg)
	}
	if _, ok := listing.FindCourse(courses, input.CourseID); !ok {
		return appErrors.Validation(MsgCourseNotFound)
	}
	if listing.HasActiveEnrollment(existing, input.StudentName, input.CourseID) {
		return appErrors.Validation(MsgDuplicateEnrollment)
	}
	return nil
}

// Enroll submits a new enrollment and refreshes the collection. When only
// the refresh fails, the result is returned together with the error.
func (s *EnrollmentService) Enroll(ctx context.Context, input models.EnrollmentInput, existing []models.Enrollment, courses []models.Course) (*EnrollmentResult, error) {
	if err := s.Validate(input, existing, courses); err != nil {
		return nil, err
	}
	input.StudentName = strings.TrimSpace(input.StudentName)

	enrollment, err := s.gateway.Create(ctx, input)
	if err != nil {
		s.logger.Warn("enrollment rejected", zap.Int64("course_id", input.CourseID), zap.Error(err))
		return nil, err
	}
	recordAudit(ctx, s.audit, models.AuditActionEnrollmentCreate, "enrollment", enrollment.ID, input)

	result := &EnrollmentResult{Enrollment: enrollment}
	result.Enrollments, err = s.gateway.List(ctx)
	return result, err
}

// Transition applies action to enrollment id. Only the edges of the status
// machine are accepted, and re-enrolling is refused while the student holds
// another active enrollment in the same course. Re-enrolling updates the
// existing record.
func (s *EnrollmentService) Transition(ctx context.Context, id int64, action models.EnrollmentAction, existing []models.Enrollment) (*EnrollmentResult, error) {
	current, ok := findEnrollment(existing, id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, MsgEnrollmentNotFound)
	}
	target, known := action.Target()
	if !known || !current.Status.Allows(action) {
		return nil, appErrors.Validation(MsgTransitionNotAllowed)
	}
	if action == models.ActionReEnroll {
		others := make([]models.Enrollment, 0, len(existing))
		for _, e := range existing {
			if e.ID != id {
				others = append(others, e)
			}
		}
		if listing.HasActiveEnrollment(others, current.StudentName, current.CourseID) {
			return nil, appErrors.Validation(MsgDuplicateEnrollment)
		}
	}

	updated, err := s.gateway.UpdateStatus(ctx, id, target)
	if err != nil {
		s.logger.Warn("status change rejected", zap.Int64("enrollment_id", id), zap.String("action", string(action)), zap.Error(err))
		return nil, err
	}
	recordAudit(ctx, s.audit, models.AuditActionEnrollmentStatus, "enrollment", id, models.StatusUpdate{Status: target})

	result := &EnrollmentResult{Enrollment: updated}
	result.Enrollments, err = s.gateway.List(ctx)
	return result, err
}

func findEnrollment(enrollments []models.Enrollment, id int64) (models.Enrollment, bool) {
	for _, e := range enrollments {
		if e.ID == id {
			return e, true
		}
	}
	return models.Enrollment{}, false
}
