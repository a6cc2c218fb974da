package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/course-enrollment-portal/internal/dto"
	"github.com/noah-isme/course-enrollment-portal/internal/listing"
	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
)

// Query keys of the dashboard URL.
const (
	qCoursesPage = "cpage"
	qCoursesSig  = "csig"
	qStudent     = "student"
	qCourse      = "course"
	qStatus      = "status"
	qOrder       = "order"
	qPage        = "page"
	qSig         = "sig"
)

type noticeBlock struct {
	Kind      models.NoticeKind
	Message   string
	DismissMs int64
}

type dashboardPage struct {
	dto.Dashboard
	CourseNotice      *noticeBlock
	EnrollNotice      *noticeBlock
	EnrollmentsNotice *noticeBlock
	// Return is the encoded query that form posts redirect back to.
	Return string
	Links  pageLinks
}

type pageLinks struct {
	values url.Values
}

func (l pageLinks) with(key string, page int) string {
	values := url.Values{}
	for k, v := range l.values {
		values[k] = append([]string(nil), v...)
	}
	values.Set(key, strconv.Itoa(page))
	return "/?" + values.Encode()
}

// CoursesPage links to page of the courses table.
func (l pageLinks) CoursesPage(page int) string {
	return l.with(qCoursesPage, page)
}

// EnrollmentsPage links to page of the enrollments table.
func (l pageLinks) EnrollmentsPage(page int) string {
	return l.with(qPage, page)
}

// Export links to the download of the current enrollment view.
func (l pageLinks) Export(format string) string {
	values := url.Values{}
	for _, key := range []string{qStudent, qCourse, qStatus, qOrder} {
		if v := l.values.Get(key); v != "" {
			values.Set(key, v)
		}
	}
	link := "/enrollments/export." + format
	if encoded := values.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

func enrollmentFilter(values url.Values) listing.EnrollmentFilter {
	status := models.EnrollmentStatus(strings.ToLower(strings.TrimSpace(values.Get(qStatus))))
	if !status.Valid() {
		status = ""
	}
	return listing.EnrollmentFilter{
		Student: strings.TrimSpace(values.Get(qStudent)),
		Course:  strings.TrimSpace(values.Get(qCourse)),
		Status:  status,
	}
}

func enrollmentsQuery(values url.Values) service.EnrollmentsQuery {
	return service.EnrollmentsQuery{
		Filter:    enrollmentFilter(values),
		Order:     listing.ParseSortOrder(values.Get(qOrder)),
		Page:      atoiOr(values.Get(qPage), 1),
		Signature: values.Get(qSig),
	}
}

func coursesQuery(values url.Values, pageKey, sigKey string) service.CoursesQuery {
	return service.CoursesQuery{
		Page:      atoiOr(values.Get(pageKey), 1),
		Signature: values.Get(sigKey),
	}
}

// viewValues captures the resolved view state so links and redirects land on
// the same pages.
func viewValues(courses dto.CoursesView, enrollments dto.EnrollmentsView) url.Values {
	values := url.Values{}
	values.Set(qCoursesPage, strconv.Itoa(courses.Pagination.Page))
	values.Set(qCoursesSig, courses.Signature)
	if enrollments.Filter.Student != "" {
		values.Set(qStudent, enrollments.Filter.Student)
	}
	if enrollments.Filter.Course != "" {
		values.Set(qCourse, enrollments.Filter.Course)
	}
	if enrollments.Filter.Status != "" {
		values.Set(qStatus, string(enrollments.Filter.Status))
	}
	values.Set(qOrder, enrollments.Filter.Order)
	values.Set(qPage, strconv.Itoa(enrollments.Pagination.Page))
	values.Set(qSig, enrollments.Signature)
	return values
}

// returnLocation rebuilds the dashboard URL from a posted return value. Only
// the query survives, so a post can never redirect off-site.
func returnLocation(raw string) string {
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if err != nil || len(values) == 0 {
		return "/"
	}
	return "/?" + values.Encode()
}

func noticeFor(session *models.Session, scope models.NoticeScope, now time.Time) *noticeBlock {
	notice, ok := session.Notices[scope]
	if !ok || notice.Expired(now) {
		return nil
	}
	block := &noticeBlock{Kind: notice.Kind, Message: notice.Message}
	if !notice.ExpiresAt.IsZero() {
		block.DismissMs = notice.ExpiresAt.Sub(now).Milliseconds()
		if block.DismissMs < 1 {
			block.DismissMs = 1
		}
	}
	return block
}

func noticeViews(session *models.Session, now time.Time) map[models.NoticeScope]dto.NoticeView {
	out := make(map[models.NoticeScope]dto.NoticeView, len(session.Notices))
	for scope, notice := range session.Notices {
		if notice.Expired(now) {
			continue
		}
		out[scope] = dto.NoticeView{Kind: notice.Kind, Message: notice.Message}
	}
	return out
}
