package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
)

// SortOrder is the direction of the student-name sort.
type SortOrder string

// Sort orders.
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder maps user input to a SortOrder, defaulting to ascending.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(OrderDesc)) {
		return OrderDesc
	}
	return OrderAsc
}

// EnrollmentFilter holds the three enrollment predicates. Empty fields match
// everything.
type EnrollmentFilter struct {
	Student string
	Course  string
	Status  models.EnrollmentStatus
}

// Empty reports whether no predicate is active.
func (f EnrollmentFilter) Empty() bool {
	return strings.TrimSpace(f.Student) == "" && strings.TrimSpace(f.Course) == "" && f.Status == ""
}

// Match reports whether e passes every predicate. courseName is the resolved
// name of e's course.
func (f EnrollmentFilter) Match(e models.Enrollment, courseName string) bool {
	if !containsFold(e.StudentName, f.Student) {
		return false
	}
	if !containsFold(courseName, f.Course) {
		return false
	}
	return f.Status == "" || e.Status == f.Status
}

// FilterEnrollments returns the enrollments passing filter, in input order.
func FilterEnrollments(enrollments []models.Enrollment, names map[int64]string, filter EnrollmentFilter) []models.Enrollment {
	out := make([]models.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if filter.Match(e, ResolveCourseName(names, e.CourseID)) {
			out = append(out, e)
		}
	}
	return out
}

// SortByStudent returns a copy of enrollments ordered by normalized student
// name using English collation. Equal keys keep their input order.
func SortByStudent(enrollments []models.Enrollment, order SortOrder) []models.Enrollment {
	out := make([]models.Enrollment, len(enrollments))
	copy(out, enrollments)

	// collate.Collator is not safe for concurrent use.
	collator := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		cmp := collator.CompareString(models.NormalizeName(out[i].StudentName), models.NormalizeName(out[j].StudentName))
		if order == OrderDesc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// Group is a run of consecutive rows sharing a normalized student name.
type Group[T any] struct {
	Key  string
	Rows []T
}

// GroupConsecutive merges adjacent items with equal keys. Run it on a page
// that is already sorted, never on the full result set.
func GroupConsecutive[T any](items []T, key func(T) string) []Group[T] {
	var groups []Group[T]
	for _, item := range items {
		k := key(item)
		if n := len(groups); n > 0 && groups[n-1].Key == k {
			groups[n-1].Rows = append(groups[n-1].Rows, item)
			continue
		}
		groups = append(groups, Group[T]{Key: k, Rows: []T{item}})
	}
	return groups
}

func containsFold(haystack, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}
