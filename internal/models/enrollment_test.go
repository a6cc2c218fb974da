package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentStatusActions(t *testing.T) {
	assert.Equal(t, []EnrollmentAction{ActionPause, ActionDrop}, EnrollmentStatusEnrolled.Actions())
	assert.Equal(t, []EnrollmentAction{ActionResume, ActionDrop}, EnrollmentStatusPaused.Actions())
	assert.Equal(t, []EnrollmentAction{ActionReEnroll}, EnrollmentStatusDropped.Actions())
	assert.Empty(t, EnrollmentStatus("archived").Actions())
}

func TestTransitionsOnlyFollowLegalEdges(t *testing.T) {
	legal := map[EnrollmentStatus][]EnrollmentStatus{
		EnrollmentStatusEnrolled: {EnrollmentStatusPaused, EnrollmentStatusDropped},
		EnrollmentStatusPaused:   {EnrollmentStatusEnrolled, EnrollmentStatusDropped},
		EnrollmentStatusDropped:  {EnrollmentStatusEnrolled},
	}
	for _, from := range EnrollmentStatuses {
		var reached []EnrollmentStatus
		for _, action := range from.Actions() {
			to, ok := action.Target()
			assert.True(t, ok)
			reached = append(reached, to)
		}
		assert.ElementsMatch(t, legal[from], reached, "from %s", from)
	}
	assert.False(t, EnrollmentStatusDropped.Allows(ActionPause))
	assert.False(t, EnrollmentStatusDropped.Allows(ActionResume))
}

func TestActionLabels(t *testing.T) {
	assert.Equal(t, "Re-Enroll", ActionReEnroll.Label())
	assert.Equal(t, "unknown", EnrollmentAction("unknown").Label())
}

func TestNoticeExpiry(t *testing.T) {
	now := time.Now()
	assert.False(t, Notice{Message: "sticky"}.Expired(now))
	assert.True(t, Notice{ExpiresAt: now}.Expired(now))
	assert.False(t, Notice{ExpiresAt: now.Add(time.Second)}.Expired(now))
}

func TestCourseFormState(t *testing.T) {
	_, editing := IdleCourseForm().Editing()
	assert.False(t, editing)

	state := EditingCourseForm(Course{ID: 7, CourseName: "Math", DurationValue: 4, DurationUnit: DurationWeeks})
	id, editing := state.Editing()
	assert.True(t, editing)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "Math", state.Draft.CourseName)
}
