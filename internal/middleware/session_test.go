package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-portal/internal/repository"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
)

type requestObserverFake struct {
	paths []string
}

func (f *requestObserverFake) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	f.paths = append(f.paths, path)
}

func newSessionRouter(sessions *service.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(sessions, SessionOptions{CookieName: "sid"}, nil))
	r.GET("/", func(c *gin.Context) {
		session := SessionFrom(c)
		c.String(http.StatusOK, session.ID+"|"+service.SessionIDFromContext(c.Request.Context()))
	})
	return r
}

func TestSessionMiddlewareIssuesAndReusesCookie(t *testing.T) {
	sessions := service.NewSessionService(repository.NewMemorySessionRepository(), service.SessionConfig{Secret: "secret", TTL: time.Hour}, nil)
	router := newSessionRouter(sessions)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	first := rec.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, first, rec.Body.String(), "a valid cookie keeps the session")
}

func TestSessionMiddlewareReplacesTamperedCookie(t *testing.T) {
	sessions := service.NewSessionService(repository.NewMemorySessionRepository(), service.SessionConfig{Secret: "secret"}, nil)
	router := newSessionRouter(sessions)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
	assert.NotEqual(t, "|", rec.Body.String())
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &requestObserverFake{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.POST("/enrollments/:id/:action", func(c *gin.Context) { c.Status(http.StatusSeeOther) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/enrollments/4/pause", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []string{"/enrollments/:id/:action", "unmatched"}, observer.paths)
}
