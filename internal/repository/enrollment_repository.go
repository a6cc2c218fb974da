package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/pkg/apiclient"
)

// EnrollmentRepository handles enrollments through the remote API.
type EnrollmentRepository struct {
	client remote
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(client remote) *EnrollmentRepository {
	return &EnrollmentRepository{client: client}
}

// List returns every enrollment.
func (r *EnrollmentRepository) List(ctx context.Context) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.client.Do(ctx, apiclient.Request{Operation: "list_enrollments", Method: http.MethodGet, Path: "/enrollments/"}, &enrollments); err != nil {
		return nil, err
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	return enrollments, nil
}

// Create enrolls a student; the server assigns the initial status.
func (r *EnrollmentRepository) Create(ctx context.Context, input models.EnrollmentInput) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.client.Do(ctx, apiclient.Request{Operation: "enroll", Method: http.MethodPost, Path: "/enrollments/", Body: input}, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// UpdateStatus sets the status of enrollment id. The target status travels
// in the JSON body, never as a query parameter.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	path := fmt.Sprintf("/enrollments/%d/status", id)
	req := apiclient.Request{Operation: "set_enrollment_status", Method: http.MethodPatch, Path: path, Body: models.StatusUpdate{Status: status}}
	if err := r.client.Do(ctx, req, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}
