package dto

import (
	"github.com/noah-isme/course-enrollment-portal/internal/models"
)

// CourseRow is one line of the courses table.
type CourseRow struct {
	models.Course
	ActiveCount    int      `json:"active_count"`
	ActiveStudents []string `json:"active_students"`
	Editing        bool     `json:"editing,omitempty"`
}

// CoursesView is a page of the courses table.
type CoursesView struct {
	Rows       []CourseRow       `json:"rows"`
	Pagination models.Pagination `json:"pagination"`
	Signature  string            `json:"signature"`
}

// ActionView is a status button rendered for an enrollment.
type ActionView struct {
	Action models.EnrollmentAction `json:"action"`
	Label  string                  `json:"label"`
}

// EnrollmentRow is one enrollment with its resolved course and legal actions.
type EnrollmentRow struct {
	models.Enrollment
	CourseName string       `json:"course_name"`
	Actions    []ActionView `json:"actions"`
}

// EnrollmentGroup merges consecutive rows of the same student on a page.
type EnrollmentGroup struct {
	Student string          `json:"student"`
	Rows    []EnrollmentRow `json:"rows"`
}

// EnrollmentFilterView echoes the active filters.
type EnrollmentFilterView struct {
	Student string                  `json:"student,omitempty"`
	Course  string                  `json:"course,omitempty"`
	Status  models.EnrollmentStatus `json:"status,omitempty"`
	Order   string                  `json:"order"`
}

// EnrollmentsView is a page of the enrollments table.
type EnrollmentsView struct {
	Rows       []EnrollmentRow      `json:"rows"`
	Groups     []EnrollmentGroup    `json:"groups"`
	Filter     EnrollmentFilterView `json:"filter"`
	Pagination models.Pagination    `json:"pagination"`
	Signature  string               `json:"signature"`
}

// NoticeView is a message rendered next to a form.
type NoticeView struct {
	Kind    models.NoticeKind `json:"kind"`
	Message string            `json:"message"`
}

// Dashboard is everything the main page renders.
type Dashboard struct {
	Courses       CoursesView                       `json:"courses"`
	Enrollments   EnrollmentsView                   `json:"enrollments"`
	CourseForm    models.CourseFormState            `json:"course_form"`
	EnrollDraft   models.EnrollmentInput            `json:"enroll_draft"`
	CourseOptions []models.Course                   `json:"course_options"`
	Units         []models.DurationUnit             `json:"units"`
	Statuses      []models.EnrollmentStatus         `json:"statuses"`
	Notices       map[models.NoticeScope]NoticeView `json:"notices,omitempty"`
	LoadError     string                            `json:"load_error,omitempty"`
}
