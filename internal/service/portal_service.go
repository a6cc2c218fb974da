package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/dto"
	"github.com/noah-isme/course-enrollment-portal/internal/listing"
	"github.com/noah-isme/course-enrollment-portal/internal/models"
)

type courseLister interface {
	List(ctx context.Context) ([]models.Course, error)
}

type enrollmentLister interface {
	List(ctx context.Context) ([]models.Enrollment, error)
}

// PortalConfig holds view sizing.
type PortalConfig struct {
	CoursesPageSize     int
	EnrollmentsPageSize int
}

// Snapshot is one consistent read of both collections. Courses are already
// deduplicated.
type Snapshot struct {
	Courses     []models.Course
	Enrollments []models.Enrollment
	LoadedAt    time.Time
}

// CoursesQuery selects a page of the courses table.
type CoursesQuery struct {
	Page      int
	Signature string
	EditingID int64
}

// EnrollmentsQuery selects a page of the enrollments table.
type EnrollmentsQuery struct {
	Filter    listing.EnrollmentFilter
	Order     listing.SortOrder
	Page      int
	Signature string
}

// PortalService composes page view models from the raw collections.
type PortalService struct {
	courses     courseLister
	enrollments enrollmentLister
	cfg         PortalConfig
	logger      *zap.Logger
}

// NewPortalService constructs PortalService.
func NewPortalService(courses courseLister, enrollments enrollmentLister, cfg PortalConfig, logger *zap.Logger) *PortalService {
	if cfg.CoursesPageSize <= 0 {
		cfg.CoursesPageSize = 3
	}
	if cfg.EnrollmentsPageSize <= 0 {
		cfg.EnrollmentsPageSize = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortalService{courses: courses, enrollments: enrollments, cfg: cfg, logger: logger}
}

// Snapshot loads both collections.
func (s *PortalService) Snapshot(ctx context.Context) (*Snapshot, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Courses:     listing.DedupeCourses(courses),
		Enrollments: enrollments,
		LoadedAt:    time.Now().UTC(),
	}, nil
}

// CoursesView builds a page of courses with their active students.
func (s *PortalService) CoursesView(snap *Snapshot, query CoursesQuery) dto.CoursesView {
	active := listing.ActiveStudents(snap.Enrollments)
	rows := make([]dto.CourseRow, 0, len(snap.Courses))
	for _, course := range snap.Courses {
		students := active[course.ID]
		if students == nil {
			students = []string{}
		}
		rows = append(rows, dto.CourseRow{
			Course:         course,
			ActiveCount:    len(students),
			ActiveStudents: students,
			Editing:        query.EditingID != 0 && query.EditingID == course.ID,
		})
	}

	signature := listing.CountSignature(len(rows))
	page := listing.ResolvePage(query.Page, query.Signature, signature)
	pageRows, meta := listing.Paginate(rows, page, s.cfg.CoursesPageSize)
	return dto.CoursesView{Rows: pageRows, Pagination: meta, Signature: signature}
}

// FilteredEnrollments returns every enrollment matching query, sorted, with
// course names resolved. Pagination is not applied.
func (s *PortalService) FilteredEnrollments(snap *Snapshot, query EnrollmentsQuery) []dto.EnrollmentRow {
	names := listing.CourseNames(snap.Courses)
	filtered := listing.FilterEnrollments(snap.Enrollments, names, query.Filter)
	sorted := listing.SortByStudent(filtered, orderOrDefault(query.Order))

	rows := make([]dto.EnrollmentRow, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, dto.EnrollmentRow{
			Enrollment: e,
			CourseName: listing.ResolveCourseName(names, e.CourseID),
			Actions:    actionViews(e.Status),
		})
	}
	return rows
}

// EnrollmentsView filters, sorts and paginates enrollments, then groups the
// rows of the resulting page by student.
func (s *PortalService) EnrollmentsView(snap *Snapshot, query EnrollmentsQuery) dto.EnrollmentsView {
	order := orderOrDefault(query.Order)
	rows := s.FilteredEnrollments(snap, query)

	signature := listing.Signature(query.Filter, order, len(rows))
	page := listing.ResolvePage(query.Page, query.Signature, signature)
	pageRows, meta := listing.Paginate(rows, page, s.cfg.EnrollmentsPageSize)

	groups := listing.GroupConsecutive(pageRows, func(r dto.EnrollmentRow) string {
		return models.NormalizeName(r.StudentName)
	})
	viewGroups := make([]dto.EnrollmentGroup, 0, len(groups))
	for _, g := range groups {
		viewGroups = append(viewGroups, dto.EnrollmentGroup{Student: strings.TrimSpace(g.Rows[0].StudentName), Rows: g.Rows})
	}

	return dto.EnrollmentsView{
		Rows:   pageRows,
		Groups: viewGroups,
		Filter: dto.EnrollmentFilterView{
			Student: query.Filter.Student,
			Course:  query.Filter.Course,
			Status:  query.Filter.Status,
			Order:   string(order),
		},
		Pagination: meta,
		Signature:  signature,
	}
}

func orderOrDefault(order listing.SortOrder) listing.SortOrder {
	if order == listing.OrderDesc {
		return order
	}
	return listing.OrderAsc
}

func actionViews(status models.EnrollmentStatus) []dto.ActionView {
	actions := status.Actions()
	out := make([]dto.ActionView, 0, len(actions))
	for _, a := range actions {
		out = append(out, dto.ActionView{Action: a, Label: a.Label()})
	}
	return out
}
