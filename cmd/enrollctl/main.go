package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/noah-isme/course-enrollment-portal/internal/repository"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
	"github.com/noah-isme/course-enrollment-portal/pkg/apiclient"
	"github.com/noah-isme/course-enrollment-portal/pkg/config"
	"github.com/noah-isme/course-enrollment-portal/pkg/logger"
	"github.com/noah-isme/course-enrollment-portal/pkg/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	client, err := apiclient.New(apiclient.Config{BaseURL: cfg.Remote.BaseURL, Timeout: cfg.Remote.Timeout, Logger: logr})
	if err != nil {
		log.Fatalf("invalid remote api config: %v", err)
	}
	courseRepo := repository.NewCourseRepository(client)
	enrollmentRepo := repository.NewEnrollmentRepository(client)
	validator := validation.New()

	cli := &commandLine{
		portal: service.NewPortalService(courseRepo, enrollmentRepo, service.PortalConfig{
			CoursesPageSize:     cfg.Listing.CoursesPageSize,
			EnrollmentsPageSize: cfg.Listing.EnrollmentsPageSize,
		}, logr),
		courses:     service.NewCourseService(courseRepo, validator, nil, logr),
		enrollments: service.NewEnrollmentService(enrollmentRepo, validator, nil, logr),
		out:         os.Stdout,
	}

	if err := cli.run(context.Background(), os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		cli.failure(err)
		os.Exit(1)
	}
}
