// Package listing turns raw course and enrollment collections into the
// deduplicated, filtered, sorted and paginated views shown to users.
package listing

import (
	"github.com/noah-isme/course-enrollment-portal/internal/models"
)

// UnknownCourse is shown for enrollments whose course is not in the collection.
const UnknownCourse = "Unknown"

// DedupeCourses keeps one record per id. The last record seen for an id wins
// while ids keep the order in which they first appeared.
func DedupeCourses(courses []models.Course) []models.Course {
	index := make(map[int64]int, len(courses))
	out := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if pos, ok := index[course.ID]; ok {
			out[pos] = course
			continue
		}
		index[course.ID] = len(out)
		out = append(out, course)
	}
	return out
}

// ActiveStudents maps course id to the names of students whose enrollment is
// not dropped, in collection order.
func ActiveStudents(enrollments []models.Enrollment) map[int64][]string {
	out := make(map[int64][]string)
	for _, e := range enrollments {
		if !e.Status.Active() {
			continue
		}
		out[e.CourseID] = append(out[e.CourseID], e.StudentName)
	}
	return out
}

// CourseNames indexes course names by id.
func CourseNames(courses []models.Course) map[int64]string {
	names := make(map[int64]string, len(courses))
	for _, c := range courses {
		names[c.ID] = c.CourseName
	}
	return names
}

// ResolveCourseName returns the course name for id or UnknownCourse.
func ResolveCourseName(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return UnknownCourse
}

// FindCourse looks a course up by id.
func FindCourse(courses []models.Course, id int64) (models.Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

// HasDuplicateName reports whether name collides, case-insensitively and
// trimmed, with any course other than exceptID. Pass 0 when creating.
func HasDuplicateName(courses []models.Course, name string, exceptID int64) bool {
	needle := models.NormalizeName(name)
	for _, c := range courses {
		if exceptID != 0 && c.ID == exceptID {
			continue
		}
		if models.NormalizeName(c.CourseName) == needle {
			return true
		}
	}
	return false
}

// HasActiveEnrollment reports whether student already holds a non-dropped
// enrollment in course.
func HasActiveEnrollment(enrollments []models.Enrollment, student string, courseID int64) bool {
	needle := models.NormalizeName(student)
	for _, e := range enrollments {
		if e.CourseID == courseID && e.Status.Active() && models.NormalizeName(e.StudentName) == needle {
			return true
		}
	}
	return false
}
