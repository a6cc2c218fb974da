package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FormMode distinguishes creating a new course from editing an existing one.
type FormMode string

// Course form modes.
const (
	FormIdle    FormMode = "idle"
	FormEditing FormMode = "editing"
)

// CourseFormState is the course form as an explicit state value: Idle or
// Editing(id), plus the fields currently shown.
type CourseFormState struct {
	Mode      FormMode    `json:"mode"`
	EditingID int64       `json:"editing_id,omitempty"`
	Draft     CourseInput `json:"draft"`
}

// IdleCourseForm returns the empty form.
func IdleCourseForm() CourseFormState {
	return CourseFormState{Mode: FormIdle, Draft: CourseInput{DurationUnit: DurationWeeks}}
}

// EditingCourseForm loads course into the form.
func EditingCourseForm(course Course) CourseFormState {
	return CourseFormState{Mode: FormEditing, EditingID: course.ID, Draft: course.Input()}
}

// Editing returns the id being edited and whether an edit is in progress.
func (s CourseFormState) Editing() (int64, bool) {
	if s.Mode == FormEditing && s.EditingID != 0 {
		return s.EditingID, true
	}
	return 0, false
}

// NoticeKind classifies a user-facing message.
type NoticeKind string

// Notice kinds.
const (
	NoticeValidation NoticeKind = "validation"
	NoticeRemote     NoticeKind = "remote"
	NoticeSuccess    NoticeKind = "success"
)

// NoticeScope names the part of the page a notice belongs to.
type NoticeScope string

// Notice scopes.
const (
	ScopeCourses     NoticeScope = "courses"
	ScopeEnrollForm  NoticeScope = "enroll"
	ScopeEnrollments NoticeScope = "enrollments"
)

// Notice is a message shown next to a form. A zero ExpiresAt never expires.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
}

// Expired reports whether the notice should no longer be shown at now.
func (n Notice) Expired(now time.Time) bool {
	return !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt)
}

// Session is the per-browser UI state. Courses and Enrollments are the
// collections last shown to this browser; commands validate against them.
type Session struct {
	ID            string                 `json:"id"`
	CourseForm    CourseFormState        `json:"course_form"`
	EnrollDraft   EnrollmentInput        `json:"enroll_draft"`
	Notices       map[NoticeScope]Notice `json:"notices,omitempty"`
	Courses       []Course               `json:"courses,omitempty"`
	Enrollments   []Enrollment           `json:"enrollments,omitempty"`
	SyncedAt      time.Time              `json:"synced_at,omitempty"`
	LastUpdatedAt time.Time              `json:"last_updated_at"`
}

// Synced reports whether the session holds a loaded view of the collections.
func (s *Session) Synced() bool {
	return !s.SyncedAt.IsZero()
}

// Sync replaces the collections held by the session.
func (s *Session) Sync(courses []Course, enrollments []Enrollment, at time.Time) {
	s.Courses = courses
	s.Enrollments = enrollments
	s.SyncedAt = at
}

// NewSession returns a fresh session with an idle form.
func NewSession(id string) *Session {
	return &Session{ID: id, CourseForm: IdleCourseForm(), Notices: map[NoticeScope]Notice{}}
}

// SessionClaims is the signed payload of the session cookie.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
