// Package fakeapi serves an in-memory stand-in for the remote course API.
// Tests point the gateway at it through httptest.
package fakeapi

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
)

// Call records one request received by the fake.
type Call struct {
	Method string
	Path   string
	Query  string
}

// Server holds the fake's state. All methods are safe for concurrent use.
type Server struct {
	mu          sync.Mutex
	courses     []models.Course
	enrollments []models.Enrollment
	nextCourse  int64
	nextEnroll  int64
	calls       []Call
	failNext    map[string]int
}

// New returns an empty fake.
func New() *Server {
	return &Server{nextCourse: 1, nextEnroll: 1, failNext: map[string]int{}}
}

// SeedCourses appends raw course records, duplicates included.
func (s *Server) SeedCourses(courses ...models.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range courses {
		s.courses = append(s.courses, c)
		if c.ID >= s.nextCourse {
			s.nextCourse = c.ID + 1
		}
	}
}

// SeedEnrollments appends raw enrollment records.
func (s *Server) SeedEnrollments(enrollments ...models.Enrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range enrollments {
		s.enrollments = append(s.enrollments, e)
		if e.ID >= s.nextEnroll {
			s.nextEnroll = e.ID + 1
		}
	}
}

// FailNext makes the next request for "METHOD /route" answer with status.
func (s *Server) FailNext(method, route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[method+" "+route] = status
}

// EmptyNext makes the next request for "METHOD /route" succeed with an empty
// body and no state change.
func (s *Server) EmptyNext(method, route string) {
	s.FailNext(method, route, http.StatusOK)
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Writes counts non-GET requests received so far.
func (s *Server) Writes() int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method != http.MethodGet {
			n++
		}
	}
	return n
}

// Courses returns a copy of the stored courses.
func (s *Server) Courses() []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Course, len(s.courses))
	copy(out, s.courses)
	return out
}

// Enrollments returns a copy of the stored enrollments.
func (s *Server) Enrollments() []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Enrollment, len(s.enrollments))
	copy(out, s.enrollments)
	return out
}

// Handler builds the HTTP routes of the fake.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(s.record)

	r.GET("/courses/", s.listCourses)
	r.POST("/courses/", s.createCourse)
	r.PUT("/courses/:id", s.updateCourse)
	r.DELETE("/courses/:id", s.deleteCourse)
	r.GET("/enrollments/", s.listEnrollments)
	r.POST("/enrollments/", s.enroll)
	r.PATCH("/enrollments/:id/status", s.changeStatus)
	return r
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: c.Request.Method, Path: c.Request.URL.Path, Query: c.Request.URL.RawQuery})
	key := c.Request.Method + " " + c.FullPath()
	status, fail := s.failNext[key]
	delete(s.failNext, key)
	s.mu.Unlock()

	if fail {
		c.AbortWithStatus(status)
		return
	}
	c.Next()
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

func (s *Server) listCourses(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Course, len(s.courses))
	copy(out, s.courses)
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCourse(c *gin.Context) {
	var in models.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil || in.DurationValue <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Input should be greater than 0"}}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.courses {
		if existing.CourseName == in.CourseName {
			detail(c, http.StatusBadRequest, "Course already exists")
			return
		}
	}
	course := models.Course{ID: s.nextCourse, CourseName: in.CourseName, DurationValue: in.DurationValue, DurationUnit: in.DurationUnit}
	s.nextCourse++
	s.courses = append(s.courses, course)
	c.JSON(http.StatusOK, course)
}

func (s *Server) updateCourse(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var in models.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].ID == id {
			s.courses[i] = models.Course{ID: id, CourseName: in.CourseName, DurationValue: in.DurationValue, DurationUnit: in.DurationUnit}
			c.JSON(http.StatusOK, s.courses[i])
			return
		}
	}
	detail(c, http.StatusNotFound, "Course not found")
}

func (s *Server) deleteCourse(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].ID == id {
			s.courses = append(s.courses[:i], s.courses[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
			return
		}
	}
	detail(c, http.StatusNotFound, "Course not found")
}

func (s *Server) listEnrollments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Enrollment, len(s.enrollments))
	copy(out, s.enrollments)
	c.JSON(http.StatusOK, out)
}

func (s *Server) enroll(c *gin.Context) {
	var in models.EnrollmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.StudentName == in.StudentName && e.CourseID == in.CourseID && e.Status != models.EnrollmentStatusDropped {
			detail(c, http.StatusBadRequest, "Student is already enrolled in this course")
			return
		}
	}
	enrollment := models.Enrollment{ID: s.nextEnroll, StudentName: in.StudentName, CourseID: in.CourseID, Status: models.EnrollmentStatusEnrolled}
	s.nextEnroll++
	s.enrollments = append(s.enrollments, enrollment)
	c.JSON(http.StatusOK, enrollment)
}

func (s *Server) changeStatus(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var body models.StatusUpdate
	if err := c.ShouldBindJSON(&body); err != nil || !body.Status.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Field required"}}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.enrollments {
		if s.enrollments[i].ID == id {
			s.enrollments[i].Status = body.Status
			c.JSON(http.StatusOK, s.enrollments[i])
			return
		}
	}
	detail(c, http.StatusNotFound, "Enrollment not found")
}
