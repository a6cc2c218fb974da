package models

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled EnrollmentStatus = "enrolled"
	EnrollmentStatusPaused   EnrollmentStatus = "paused"
	EnrollmentStatusDropped  EnrollmentStatus = "dropped"
)

// EnrollmentStatuses lists every status in display order.
var EnrollmentStatuses = []EnrollmentStatus{EnrollmentStatusEnrolled, EnrollmentStatusPaused, EnrollmentStatusDropped}

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusPaused, EnrollmentStatusDropped:
		return true
	}
	return false
}

// Active reports whether the enrollment still occupies the student's seat.
func (s EnrollmentStatus) Active() bool {
	return s != EnrollmentStatusDropped
}

// EnrollmentAction is a user-facing status transition.
type EnrollmentAction string

// Supported actions.
const (
	ActionPause    EnrollmentAction = "pause"
	ActionResume   EnrollmentAction = "resume"
	ActionDrop     EnrollmentAction = "drop"
	ActionReEnroll EnrollmentAction = "reenroll"
)

var transitions = map[EnrollmentStatus][]EnrollmentAction{
	EnrollmentStatusEnrolled: {ActionPause, ActionDrop},
	EnrollmentStatusPaused:   {ActionResume, ActionDrop},
	EnrollmentStatusDropped:  {ActionReEnroll},
}

var actionTargets = map[EnrollmentAction]EnrollmentStatus{
	ActionPause:    EnrollmentStatusPaused,
	ActionResume:   EnrollmentStatusEnrolled,
	ActionDrop:     EnrollmentStatusDropped,
	ActionReEnroll: EnrollmentStatusEnrolled,
}

var actionLabels = map[EnrollmentAction]string{
	ActionPause:    "Pause",
	ActionResume:   "Resume",
	ActionDrop:     "Drop",
	ActionReEnroll: "Re-Enroll",
}

// Actions returns the legal actions from s, in display order.
func (s EnrollmentStatus) Actions() []EnrollmentAction {
	actions := transitions[s]
	out := make([]EnrollmentAction, len(actions))
	copy(out, actions)
	return out
}

// Allows reports whether action is a legal transition from s.
func (s EnrollmentStatus) Allows(action EnrollmentAction) bool {
	for _, a := range transitions[s] {
		if a == action {
			return true
		}
	}
	return false
}

// Target returns the destination status of the action.
func (a EnrollmentAction) Target() (EnrollmentStatus, bool) {
	status, ok := actionTargets[a]
	return status, ok
}

// Label returns the button caption for the action.
func (a EnrollmentAction) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return string(a)
}

// Enrollment captures a student's registration to a course.
type Enrollment struct {
	ID          int64            `json:"id"`
	StudentName string           `json:"student_name"`
	CourseID    int64            `json:"course_id"`
	Status      EnrollmentStatus `json:"status"`
}

// EnrollmentInput is the payload for a new enrollment.
type EnrollmentInput struct {
	StudentName string `json:"student_name" label:"student name" validate:"notblank"`
	CourseID    int64  `json:"course_id" label:"course" validate:"required"`
}

// StatusUpdate is the status-change body sent to the remote API.
type StatusUpdate struct {
	Status EnrollmentStatus `json:"status"`
}
