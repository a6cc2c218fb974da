package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
	"github.com/noah-isme/course-enrollment-portal/pkg/response"
)

type auditReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// ViewHandler exposes the dashboard view models as JSON.
type ViewHandler struct {
	portal *service.PortalService
	audit  auditReader
}

// NewViewHandler constructs ViewHandler. audit may be nil when the audit trail
// is disabled.
func NewViewHandler(portal *service.PortalService, audit auditReader) *ViewHandler {
	return &ViewHandler{portal: portal, audit: audit}
}

// Courses godoc
// @Summary Courses table
// @Tags Views
// @Produce json
// @Param page query int false "Page number"
// @Param sig query string false "Signature of the view the page number belongs to"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /courses [get]
func (h *ViewHandler) Courses(c *gin.Context) {
	snap, err := h.portal.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	view := h.portal.CoursesView(snap, coursesQuery(c.Request.URL.Query(), qPage, qSig))
	pagination := view.Pagination
	response.JSON(c, http.StatusOK, view.Rows, &pagination, map[string]interface{}{
		"signature": view.Signature,
	})
}

// Enrollments godoc
// @Summary Enrollments table
// @Tags Views
// @Produce json
// @Param student query string false "Student name contains"
// @Param course query string false "Course name contains"
// @Param status query string false "Status" Enums(enrolled, paused, dropped)
// @Param order query string false "Student sort order" Enums(asc, desc)
// @Param page query int false "Page number"
// @Param sig query string false "Signature of the view the page number belongs to"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /enrollments [get]
func (h *ViewHandler) Enrollments(c *gin.Context) {
	snap, err := h.portal.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	view := h.portal.EnrollmentsView(snap, enrollmentsQuery(c.Request.URL.Query()))
	pagination := view.Pagination
	response.JSON(c, http.StatusOK, view.Groups, &pagination, map[string]interface{}{
		"signature": view.Signature,
		"filter":    view.Filter,
	})
}

// Audit godoc
// @Summary Recent portal commands
// @Tags Audit
// @Produce json
// @Param limit query int false "Maximum entries (default 20, max 100)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /audit [get]
func (h *ViewHandler) Audit(c *gin.Context) {
	if h.audit == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "audit trail disabled"))
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.audit.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
