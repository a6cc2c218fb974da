package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
)

func TestJSONEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 1, PageSize: 5, TotalCount: 1, TotalPages: 1})

	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Pagination.TotalPages)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, appErrors.Remote("Course not found", errors.New("status 404")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "REMOTE_ERROR", body.Error.Code)
	assert.Equal(t, "Course not found", body.Error.Message)
}

func TestSeeOtherAndAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses", nil)

	SeeOther(c, "/?cpage=2")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?cpage=2", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	Attachment(c, "enrollments.csv", "text/csv")
	assert.Equal(t, `attachment; filename="enrollments.csv"`, rec.Header().Get("Content-Disposition"))
}
