package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-portal/internal/fakeapi"
	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/repository"
	"github.com/noah-isme/course-enrollment-portal/pkg/apiclient"
)

func newProber(t *testing.T, fake *fakeapi.Server, write bool) *prober {
	t.Helper()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return &prober{
		courses:     repository.NewCourseRepository(client),
		enrollments: repository.NewEnrollmentRepository(client),
		write:       write,
	}
}

func TestProbePassesAgainstConformingAPI(t *testing.T) {
	fake := fakeapi.New()
	fake.SeedCourses(
		models.Course{ID: 1, CourseName: "Math", DurationValue: 2, DurationUnit: models.DurationWeeks},
		models.Course{ID: 1, CourseName: "Math", DurationValue: 3, DurationUnit: models.DurationWeeks},
	)
	fake.SeedEnrollments(models.Enrollment{ID: 1, StudentName: "Bea", CourseID: 1, Status: models.EnrollmentStatusPaused})

	checks := newProber(t, fake, true).run(context.Background())
	require.Len(t, checks, 4)
	for _, c := range checks {
		assert.NoError(t, c.Err, c.Name)
	}
	assert.Equal(t, "2 records, 1 duplicate ids", checks[0].Note)
	assert.Equal(t, "Course not found", checks[2].Note)
	assert.Len(t, fake.Courses(), 2)

	var out bytes.Buffer
	breaking, optional := printReport(&out, checks)
	assert.Zero(t, breaking)
	assert.Zero(t, optional)
	assert.Contains(t, out.String(), "PASS")
}

func TestProbeFlagsUnknownStatus(t *testing.T) {
	fake := fakeapi.New()
	fake.SeedEnrollments(models.Enrollment{ID: 7, StudentName: "Bea", CourseID: 1, Status: "archived"})

	checks := newProber(t, fake, false).run(context.Background())
	require.Len(t, checks, 3)
	require.Error(t, checks[1].Err)
	assert.Contains(t, checks[1].Err.Error(), `unknown status "archived"`)

	var out bytes.Buffer
	breaking, _ := printReport(&out, checks)
	assert.Equal(t, 1, breaking)
	assert.Contains(t, out.String(), "FAIL")
}
