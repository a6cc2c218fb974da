package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
)

func enrollment(id int64, student string, course int64, status models.EnrollmentStatus) models.Enrollment {
	return models.Enrollment{ID: id, StudentName: student, CourseID: course, Status: status}
}

func TestDedupeCoursesKeepsLastRecordInFirstSeenOrder(t *testing.T) {
	courses := []models.Course{
		{ID: 1, CourseName: "Math"},
		{ID: 2, CourseName: "Art"},
		{ID: 1, CourseName: "Math2"},
		{ID: 3, CourseName: "Bio"},
		{ID: 2, CourseName: "Art II"},
	}

	got := DedupeCourses(courses)

	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "Math2", got[0].CourseName)
	assert.Equal(t, "Art II", got[1].CourseName)
}

func TestDedupeCoursesSingleID(t *testing.T) {
	got := DedupeCourses([]models.Course{{ID: 1, CourseName: "Math"}, {ID: 1, CourseName: "Math2"}})
	assert.Equal(t, []models.Course{{ID: 1, CourseName: "Math2"}}, got)
	assert.Empty(t, DedupeCourses(nil))
}

func TestActiveStudentsSkipsDropped(t *testing.T) {
	enrollments := []models.Enrollment{
		enrollment(1, "Al", 1, models.EnrollmentStatusEnrolled),
		enrollment(2, "Bo", 1, models.EnrollmentStatusPaused),
		enrollment(3, "Cy", 1, models.EnrollmentStatusDropped),
		enrollment(4, "Di", 2, models.EnrollmentStatusEnrolled),
	}

	got := ActiveStudents(enrollments)

	assert.Equal(t, []string{"Al", "Bo"}, got[1])
	assert.Equal(t, []string{"Di"}, got[2])
	assert.Len(t, got[3], 0)
}

func TestHasDuplicateName(t *testing.T) {
	courses := []models.Course{{ID: 1, CourseName: "Math"}, {ID: 2, CourseName: "Art"}}

	assert.True(t, HasDuplicateName(courses, "  math ", 0))
	assert.False(t, HasDuplicateName(courses, "Math", 1), "a course never collides with itself")
	assert.True(t, HasDuplicateName(courses, "ART", 1))
	assert.False(t, HasDuplicateName(courses, "History", 0))
}

func TestHasActiveEnrollment(t *testing.T) {
	enrollments := []models.Enrollment{
		enrollment(1, "Al", 1, models.EnrollmentStatusEnrolled),
		enrollment(2, "al", 1, models.EnrollmentStatusPaused),
		enrollment(3, "Bo", 2, models.EnrollmentStatusDropped),
	}

	assert.True(t, HasActiveEnrollment(enrollments, "AL", 1))
	assert.True(t, HasActiveEnrollment(enrollments[1:], " AL ", 1), "paused still counts as active")
	assert.False(t, HasActiveEnrollment(enrollments, "Bo", 2), "dropped students may enroll again")
	assert.False(t, HasActiveEnrollment(enrollments, "Al", 2))
}

func TestFilterEnrollments(t *testing.T) {
	names := map[int64]string{1: "Mathematics", 2: "Art"}
	enrollments := []models.Enrollment{
		enrollment(1, "Alice", 1, models.EnrollmentStatusEnrolled),
		enrollment(2, "Bob", 2, models.EnrollmentStatusPaused),
		enrollment(3, "alina", 2, models.EnrollmentStatusEnrolled),
		enrollment(4, "Carl", 9, models.EnrollmentStatusDropped),
	}

	cases := []struct {
		name   string
		filter EnrollmentFilter
		want   []int64
	}{
		{name: "empty matches all", filter: EnrollmentFilter{}, want: []int64{1, 2, 3, 4}},
		{name: "student substring", filter: EnrollmentFilter{Student: "ALI"}, want: []int64{1, 3}},
		{name: "course substring", filter: EnrollmentFilter{Course: "math"}, want: []int64{1}},
		{name: "unknown course", filter: EnrollmentFilter{Course: "unknown"}, want: []int64{4}},
		{name: "status exact", filter: EnrollmentFilter{Status: models.EnrollmentStatusEnrolled}, want: []int64{1, 3}},
		{name: "all predicates", filter: EnrollmentFilter{Student: "al", Course: "art", Status: models.EnrollmentStatusEnrolled}, want: []int64{3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterEnrollments(enrollments, names, tc.filter)
			ids := make([]int64, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestSortByStudentIsStableAndCaseInsensitive(t *testing.T) {
	enrollments := []models.Enrollment{
		enrollment(1, "bob", 1, models.EnrollmentStatusEnrolled),
		enrollment(2, "Alice", 1, models.EnrollmentStatusEnrolled),
		enrollment(3, " Bob", 2, models.EnrollmentStatusPaused),
		enrollment(4, "Émile", 1, models.EnrollmentStatusEnrolled),
		enrollment(5, "carl", 1, models.EnrollmentStatusEnrolled),
	}

	asc := SortByStudent(enrollments, OrderAsc)
	assert.Equal(t, []int64{2, 1, 3, 5, 4}, ids(asc))

	desc := SortByStudent(enrollments, OrderDesc)
	assert.Equal(t, []int64{4, 5, 1, 3, 2}, ids(desc))

	// input untouched
	assert.Equal(t, int64(1), enrollments[0].ID)
}

func TestGroupConsecutive(t *testing.T) {
	page := []models.Enrollment{
		enrollment(1, "Al", 1, models.EnrollmentStatusEnrolled),
		enrollment(2, "al ", 2, models.EnrollmentStatusPaused),
		enrollment(3, "Bo", 1, models.EnrollmentStatusEnrolled),
	}

	groups := GroupConsecutive(page, func(e models.Enrollment) string { return models.NormalizeName(e.StudentName) })

	require.Len(t, groups, 2)
	assert.Equal(t, "al", groups[0].Key)
	assert.Len(t, groups[0].Rows, 2)
	assert.Equal(t, "bo", groups[1].Key)
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, OrderDesc, ParseSortOrder("DESC"))
	assert.Equal(t, OrderAsc, ParseSortOrder(""))
	assert.Equal(t, OrderAsc, ParseSortOrder("sideways"))
}

func ids(enrollments []models.Enrollment) []int64 {
	out := make([]int64, len(enrollments))
	for i, e := range enrollments {
		out[i] = e.ID
	}
	return out
}
