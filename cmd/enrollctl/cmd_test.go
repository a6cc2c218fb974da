package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-portal/internal/fakeapi"
	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/repository"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
	"github.com/noah-isme/course-enrollment-portal/pkg/apiclient"
	"github.com/noah-isme/course-enrollment-portal/pkg/validation"
)

func setup(t *testing.T) (*commandLine, *fakeapi.Server, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	fake := fakeapi.New()
	fake.SeedCourses(
		models.Course{ID: 1, CourseName: "Math", DurationValue: 6, DurationUnit: models.DurationWeeks},
		models.Course{ID: 2, CourseName: "Art", DurationValue: 2, DurationUnit: models.DurationMonths},
	)
	fake.SeedEnrollments(
		models.Enrollment{ID: 1, StudentName: "Bea", CourseID: 1, Status: models.EnrollmentStatusEnrolled},
		models.Enrollment{ID: 2, StudentName: "Bea", CourseID: 2, Status: models.EnrollmentStatusDropped},
	)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	courseRepo := repository.NewCourseRepository(client)
	enrollmentRepo := repository.NewEnrollmentRepository(client)
	validator := validation.New()

	out := &bytes.Buffer{}
	return &commandLine{
		portal:      service.NewPortalService(courseRepo, enrollmentRepo, service.PortalConfig{}, nil),
		courses:     service.NewCourseService(courseRepo, validator, nil, nil),
		enrollments: service.NewEnrollmentService(enrollmentRepo, validator, nil, nil),
		out:         out,
	}, fake, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
}

func Test_commandLine_run(t *testing.T) {
	tests := []cliTest{
		{name: "no command", args: []string{}, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "courses", args: []string{"courses"}, wantOut: []string{"Math", "6 weeks", "Bea", "Page 1 of 1 (2 total)"}},
		{name: "enrollments", args: []string{"enrollments", "-order", "desc"}, wantOut: []string{"Art", "reenroll", "pause drop"}},
		{name: "enrollments: bad status", args: []string{"enrollments", "-status", "lol"}, wantErrStr: `unknown status "lol"`},
		{name: "add-course: blank name", args: []string{"add-course", "-name", " ", "-duration", "3"}, wantErrStr: "name required"},
		{name: "add-course: duplicate", args: []string{"add-course", "-name", "ART", "-duration", "3"}, wantErrStr: service.MsgDuplicateCourseName},
		{name: "add-course", args: []string{"add-course", "-name", "Bio", "-duration", "3", "-unit", "days"}, wantOut: []string{"Saved course 3: Bio"}},
		{name: "edit-course: no id", args: []string{"edit-course", "-name", "X"}, wantErr: errHelp},
		{name: "edit-course: unknown", args: []string{"edit-course", "-id", "9", "-name", "X", "-duration", "1"}, wantErrStr: service.MsgCourseNotFound},
		{name: "edit-course", args: []string{"edit-course", "-id", "1", "-name", "Math", "-duration", "8"}, wantOut: []string{"Saved course 1: Math"}},
		{name: "delete-course", args: []string{"delete-course", "-id", "2"}, wantOut: []string{"Deleted course 2"}},
		{name: "enroll: duplicate", args: []string{"enroll", "-student", "bea", "-course", "1"}, wantErrStr: service.MsgDuplicateEnrollment},
		{name: "enroll: unknown course", args: []string{"enroll", "-student", "Dee", "-course", "9"}, wantErrStr: service.MsgCourseNotFound},
		{name: "enroll", args: []string{"enroll", "-student", "Dee", "-course", "1"}, wantOut: []string{"Enrolled Dee"}},
		{name: "resume: not allowed", args: []string{"resume", "-id", "1"}, wantErrStr: service.MsgTransitionNotAllowed},
		{name: "pause", args: []string{"pause", "-id", "1"}, wantOut: []string{"Enrollment 1 is now paused"}},
		{name: "drop: no id", args: []string{"drop"}, wantErr: errHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _, out := setup(t)
			err := cli.run(context.Background(), append([]string{"enrollctl"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func Test_commandLine_failure(t *testing.T) {
	cli, fake, out := setup(t)
	fake.FailNext("GET", "/courses/", 500)

	err := cli.run(context.Background(), []string{"enrollctl", "courses"})
	require.Error(t, err)
	cli.failure(err)
	assert.Contains(t, out.String(), "Something went wrong")
}

func Test_commandLine_transitionWithoutResponseBody(t *testing.T) {
	cli, fake, out := setup(t)
	fake.EmptyNext("PATCH", "/enrollments/:id/status")

	require.NoError(t, cli.run(context.Background(), []string{"enrollctl", "drop", "-id", "1"}))
	assert.Contains(t, out.String(), "Enrollment 1 is now dropped")
}
