// contract_probe checks that a course API speaks the contract the portal
// depends on: list shapes, status enum values, error detail bodies and,
// optionally, a create/delete round trip.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/repository"
	"github.com/noah-isme/course-enrollment-portal/pkg/apiclient"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
)

type courseAPI interface {
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, input models.CourseInput) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
}

type enrollmentAPI interface {
	List(ctx context.Context) ([]models.Enrollment, error)
}

type check struct {
	Name     string
	Critical bool
	Err      error
	Duration time.Duration
	Note     string
}

type prober struct {
	courses     courseAPI
	enrollments enrollmentAPI
	write       bool
}

func main() {
	var (
		base    string
		timeout time.Duration
		write   bool
	)
	flag.StringVar(&base, "base", "http://localhost:8000", "Course API base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.BoolVar(&write, "write", false, "Also create and delete a probe course")
	flag.Parse()

	client, err := apiclient.New(apiclient.Config{BaseURL: base, Timeout: timeout})
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}
	p := &prober{
		courses:     repository.NewCourseRepository(client),
		enrollments: repository.NewEnrollmentRepository(client),
		write:       write,
	}

	checks := p.run(context.Background())
	breaking, optional := printReport(os.Stdout, checks)
	fmt.Printf("Breaking failures: %d, Optional failures: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func (p *prober) run(ctx context.Context) []check {
	checks := []check{
		p.timed(ctx, "list courses", true, p.listCourses),
		p.timed(ctx, "list enrollments", true, p.listEnrollments),
		p.timed(ctx, "error detail on missing course", false, p.missingCourse),
	}
	if p.write {
		checks = append(checks, p.timed(ctx, "create and delete course", true, p.roundTrip))
	}
	return checks
}

func (p *prober) timed(ctx context.Context, name string, critical bool, fn func(context.Context) (string, error)) check {
	start := time.Now()
	note, err := fn(ctx)
	return check{Name: name, Critical: critical, Err: err, Duration: time.Since(start), Note: note}
}

func (p *prober) listCourses(ctx context.Context) (string, error) {
	courses, err := p.courses.List(ctx)
	if err != nil {
		return "", err
	}
	seen := map[int64]bool{}
	duplicates := 0
	for _, c := range courses {
		if c.ID == 0 {
			return "", fmt.Errorf("course %q has no id", c.CourseName)
		}
		switch c.DurationUnit {
		case models.DurationDays, models.DurationWeeks, models.DurationMonths:
		default:
			return "", fmt.Errorf("course %d has unknown duration unit %q", c.ID, c.DurationUnit)
		}
		if seen[c.ID] {
			duplicates++
		}
		seen[c.ID] = true
	}
	return fmt.Sprintf("%d records, %d duplicate ids", len(courses), duplicates), nil
}

func (p *prober) listEnrollments(ctx context.Context) (string, error) {
	enrollments, err := p.enrollments.List(ctx)
	if err != nil {
		return "", err
	}
	for _, e := range enrollments {
		if !e.Status.Valid() {
			return "", fmt.Errorf("enrollment %d has unknown status %q", e.ID, e.Status)
		}
	}
	return fmt.Sprintf("%d records", len(enrollments)), nil
}

func (p *prober) missingCourse(ctx context.Context) (string, error) {
	err := p.courses.Delete(ctx, -1)
	if err == nil {
		return "", fmt.Errorf("deleting course -1 succeeded")
	}
	appErr := appErrors.FromError(err)
	if appErr.Message == appErrors.FallbackRemoteMessage {
		return "", fmt.Errorf("no usable detail in error body")
	}
	return appErr.Message, nil
}

func (p *prober) roundTrip(ctx context.Context) (string, error) {
	name := fmt.Sprintf("contract-probe-%d", time.Now().UnixNano())
	created, err := p.courses.Create(ctx, models.CourseInput{CourseName: name, DurationValue: 1, DurationUnit: models.DurationDays})
	if err != nil {
		return "", err
	}
	if created.CourseName != name {
		return "", fmt.Errorf("created course echoed name %q", created.CourseName)
	}
	if err := p.courses.Delete(ctx, created.ID); err != nil {
		return "", fmt.Errorf("cleanup of course %d: %w", created.ID, err)
	}
	return fmt.Sprintf("course %d", created.ID), nil
}

func printReport(w io.Writer, checks []check) (breaking, optional int) {
	fmt.Fprintln(w, "Contract probe report")
	for _, c := range checks {
		status := "PASS"
		detail := c.Note
		if c.Err != nil {
			status = "FAIL"
			detail = c.Err.Error()
			if c.Critical {
				breaking++
			} else {
				optional++
			}
		}
		fmt.Fprintf(w, "- %-32s %s (%s) %s\n", c.Name, status, c.Duration.Round(time.Millisecond), detail)
	}
	return breaking, optional
}
