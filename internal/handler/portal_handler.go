package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/dto"
	"github.com/noah-isme/course-enrollment-portal/internal/middleware"
	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
	"github.com/noah-isme/course-enrollment-portal/pkg/response"
)

// PortalHandler serves the HTML front end. Every form post finishes with a
// redirect back to the dashboard.
type PortalHandler struct {
	portal      *service.PortalService
	courses     *service.CourseService
	enrollments *service.EnrollmentService
	sessions    *service.SessionService
	exports     *service.ExportService
	logger      *zap.Logger
	now         func() time.Time
}

// NewPortalHandler constructs PortalHandler.
func NewPortalHandler(portal *service.PortalService, courses *service.CourseService, enrollments *service.EnrollmentService, sessions *service.SessionService, exports *service.ExportService, logger *zap.Logger) *PortalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortalHandler{
		portal:      portal,
		courses:     courses,
		enrollments: enrollments,
		sessions:    sessions,
		exports:     exports,
		logger:      logger,
		now:         time.Now,
	}
}

// Dashboard renders the courses table, the forms and the enrollments table.
func (h *PortalHandler) Dashboard(c *gin.Context) {
	session := h.session(c)
	ctx := c.Request.Context()

	snap, err := h.portal.Snapshot(ctx)
	loadError := ""
	if err != nil {
		_, loadError = service.NoticeFromError(err)
		snap = &service.Snapshot{Courses: session.Courses, Enrollments: session.Enrollments}
	} else {
		session.Sync(snap.Courses, snap.Enrollments, snap.LoadedAt)
	}

	values := c.Request.URL.Query()
	cq := coursesQuery(values, qCoursesPage, qCoursesSig)
	cq.EditingID, _ = session.CourseForm.Editing()
	coursesView := h.portal.CoursesView(snap, cq)
	enrollmentsView := h.portal.EnrollmentsView(snap, enrollmentsQuery(values))

	now := h.now()
	state := viewValues(coursesView, enrollmentsView)
	page := dashboardPage{
		Dashboard: dto.Dashboard{
			Courses:       coursesView,
			Enrollments:   enrollmentsView,
			CourseForm:    session.CourseForm,
			EnrollDraft:   session.EnrollDraft,
			CourseOptions: snap.Courses,
			Units:         models.DurationUnits,
			Statuses:      models.EnrollmentStatuses,
			Notices:       noticeViews(session, now),
			LoadError:     loadError,
		},
		CourseNotice:      noticeFor(session, models.ScopeCourses, now),
		EnrollNotice:      noticeFor(session, models.ScopeEnrollForm, now),
		EnrollmentsNotice: noticeFor(session, models.ScopeEnrollments, now),
		Return:            state.Encode(),
		Links:             pageLinks{values: state},
	}

	if err == nil {
		h.save(ctx, session)
	}
	response.HTML(c, http.StatusOK, "index.html", page)
}

// SubmitCourse creates a course, or updates the course being edited.
func (h *PortalHandler) SubmitCourse(c *gin.Context) {
	session := h.session(c)
	ctx := c.Request.Context()
	h.sessions.Clear(session, models.ScopeCourses)

	input := models.CourseInput{
		CourseName:    c.PostForm("course_name"),
		DurationValue: atoiOr(c.PostForm("duration_value"), 0),
		DurationUnit:  models.DurationUnit(strings.TrimSpace(c.PostForm("duration_unit"))),
	}

	if err := h.ensureSynced(ctx, session); err != nil {
		session.CourseForm.Draft = input
		h.sessions.NotifyError(session, models.ScopeCourses, err)
		h.finish(c, session)
		return
	}

	_, editing := session.CourseForm.Editing()
	result, err := h.courses.Submit(ctx, session.CourseForm, input, session.Courses)
	if result == nil {
		session.CourseForm.Draft = input
		h.sessions.NotifyError(session, models.ScopeCourses, err)
		h.finish(c, session)
		return
	}

	session.CourseForm = result.State
	message := "Course added"
	if editing {
		message = "Course updated"
	}
	h.afterCourseWrite(session, result, err, message)
	h.finish(c, session)
}

// EditCourse loads a course into the form.
func (h *PortalHandler) EditCourse(c *gin.Context) {
	session := h.session(c)
	h.sessions.Clear(session, models.ScopeCourses)

	id, err := parseID(c.Param("id"))
	if err == nil {
		err = h.ensureSynced(c.Request.Context(), session)
	}
	if err == nil {
		session.CourseForm, err = h.courses.BeginEdit(session.Courses, id)
	}
	if err != nil {
		h.sessions.NotifyError(session, models.ScopeCourses, err)
	}
	h.finish(c, session)
}

// CancelEdit discards the edit in progress.
func (h *PortalHandler) CancelEdit(c *gin.Context) {
	session := h.session(c)
	h.sessions.Clear(session, models.ScopeCourses)
	session.CourseForm = h.courses.Cancel()
	h.finish(c, session)
}

// DeleteCourse removes a course.
func (h *PortalHandler) DeleteCourse(c *gin.Context) {
	session := h.session(c)
	h.sessions.Clear(session, models.ScopeCourses)

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.sessions.NotifyError(session, models.ScopeCourses, err)
		h.finish(c, session)
		return
	}
	result, err := h.courses.Delete(c.Request.Context(), session.CourseForm, id)
	if result == nil {
		h.sessions.NotifyError(session, models.ScopeCourses, err)
		h.finish(c, session)
		return
	}
	session.CourseForm = result.State
	h.afterCourseWrite(session, result, err, "Course deleted")
	h.finish(c, session)
}

// Enroll submits the enrollment form.
func (h *PortalHandler) Enroll(c *gin.Context) {
	session := h.session(c)
	ctx := c.Request.Context()
	h.sessions.Clear(session, models.ScopeEnrollForm)

	courseID, _ := strconv.ParseInt(strings.TrimSpace(c.PostForm("course_id")), 10, 64)
	input := models.EnrollmentInput{StudentName: c.PostForm("student_name"), CourseID: courseID}

	err := h.ensureSynced(ctx, session)
	var result *service.EnrollmentResult
	if err == nil {
		result, err = h.enrollments.Enroll(ctx, input, session.Enrollments, session.Courses)
	}
	if result == nil {
		session.EnrollDraft = input
		h.sessions.NotifyError(session, models.ScopeEnrollForm, err)
		h.finish(c, session)
		return
	}

	session.EnrollDraft = models.EnrollmentInput{}
	h.afterEnrollmentWrite(session, models.ScopeEnrollForm, result, err, "Student enrolled")
	h.finish(c, session)
}

// Transition applies a status action to an enrollment.
func (h *PortalHandler) Transition(c *gin.Context) {
	session := h.session(c)
	ctx := c.Request.Context()
	h.sessions.Clear(session, models.ScopeEnrollments)

	id, err := parseID(c.Param("id"))
	if err == nil {
		err = h.ensureSynced(ctx, session)
	}
	var result *service.EnrollmentResult
	action := models.EnrollmentAction(strings.ToLower(c.Param("action")))
	if err == nil {
		result, err = h.enrollments.Transition(ctx, id, action, session.Enrollments)
	}
	if result == nil {
		h.sessions.NotifyError(session, models.ScopeEnrollments, err)
		h.finish(c, session)
		return
	}

	// The server may answer the patch without a body.
	target, _ := action.Target()
	h.afterEnrollmentWrite(session, models.ScopeEnrollments, result, err, "Status changed to "+string(target))
	h.finish(c, session)
}

// Export downloads the filtered, sorted enrollment view across all pages.
func (h *PortalHandler) Export(format service.ExportFormat) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := h.portal.Snapshot(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		rows := h.portal.FilteredEnrollments(snap, enrollmentsQuery(c.Request.URL.Query()))

		response.Attachment(c, h.exports.Filename(format), format.ContentType())
		c.Status(http.StatusOK)
		if err := h.exports.WriteEnrollments(c.Writer, rows, format); err != nil {
			h.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
			_ = c.Error(err)
		}
	}
}

func (h *PortalHandler) session(c *gin.Context) *models.Session {
	if session := middleware.SessionFrom(c); session != nil {
		return session
	}
	// Routes mounted without the session middleware get a throwaway session.
	return models.NewSession(h.sessions.NewID())
}

// ensureSynced loads the collections when the session has never seen them.
func (h *PortalHandler) ensureSynced(ctx context.Context, session *models.Session) error {
	if session.Synced() {
		return nil
	}
	snap, err := h.portal.Snapshot(ctx)
	if err != nil {
		return err
	}
	session.Sync(snap.Courses, snap.Enrollments, snap.LoadedAt)
	return nil
}

func (h *PortalHandler) afterCourseWrite(session *models.Session, result *service.CourseResult, refreshErr error, message string) {
	if refreshErr != nil {
		// The write went through; the next page load refetches.
		session.SyncedAt = time.Time{}
		h.sessions.NotifyError(session, models.ScopeCourses, refreshErr)
		return
	}
	session.Sync(result.Courses, session.Enrollments, h.now().UTC())
	h.sessions.Notify(session, models.ScopeCourses, models.NoticeSuccess, message)
}

func (h *PortalHandler) afterEnrollmentWrite(session *models.Session, scope models.NoticeScope, result *service.EnrollmentResult, refreshErr error, message string) {
	if refreshErr != nil {
		session.SyncedAt = time.Time{}
		h.sessions.NotifyError(session, scope, refreshErr)
		return
	}
	session.Sync(session.Courses, result.Enrollments, h.now().UTC())
	h.sessions.Notify(session, scope, models.NoticeSuccess, message)
}

func (h *PortalHandler) save(ctx context.Context, session *models.Session) {
	if err := h.sessions.Save(ctx, session); err != nil {
		h.logger.Warn("failed to save session", zap.String("session_id", session.ID), zap.Error(err))
	}
}

func (h *PortalHandler) finish(c *gin.Context, session *models.Session) {
	h.save(c.Request.Context(), session)
	response.SeeOther(c, returnLocation(c.PostForm("return")))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "unknown record")
	}
	return id, nil
}
