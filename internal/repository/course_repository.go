package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/pkg/apiclient"
)

// remote is the subset of apiclient.Client the gateway repositories use.
type remote interface {
	Do(ctx context.Context, req apiclient.Request, out interface{}) error
}

// CourseRepository reads and writes courses through the remote API.
type CourseRepository struct {
	client remote
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(client remote) *CourseRepository {
	return &CourseRepository{client: client}
}

// List returns every course the API knows about, in API order.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.client.Do(ctx, apiclient.Request{Operation: "list_courses", Method: http.MethodGet, Path: "/courses/"}, &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Create persists a new course and returns the server's record.
func (r *CourseRepository) Create(ctx context.Context, input models.CourseInput) (*models.Course, error) {
	var course models.Course
	if err := r.client.Do(ctx, apiclient.Request{Operation: "create_course", Method: http.MethodPost, Path: "/courses/", Body: input}, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update replaces the full record of course id.
func (r *CourseRepository) Update(ctx context.Context, id int64, input models.CourseInput) (*models.Course, error) {
	var course models.Course
	path := fmt.Sprintf("/courses/%d", id)
	if err := r.client.Do(ctx, apiclient.Request{Operation: "update_course", Method: http.MethodPut, Path: path, Body: input}, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Delete removes course id.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/courses/%d", id)
	return r.client.Do(ctx, apiclient.Request{Operation: "delete_course", Method: http.MethodDelete, Path: path}, nil)
}
