package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/pkg/jobs"
	"github.com/noah-isme/course-enrollment-portal/pkg/middleware/requestid"
)

type auditQueueFake struct {
	jobs []jobs.Job
	err  error
}

func (f *auditQueueFake) Enqueue(job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type auditStoreFake struct {
	logs []*models.AuditLog
}

func (f *auditStoreFake) Create(ctx context.Context, log *models.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func TestAuditServiceRecordAndHandle(t *testing.T) {
	queue := &auditQueueFake{}
	store := &auditStoreFake{}
	svc := NewAuditService(store, queue, nil)

	ctx := requestid.WithContext(WithSessionID(context.Background(), "sid-7"), "req-42")
	svc.Record(ctx, models.AuditActionEnrollmentStatus, "enrollment", 12, models.StatusUpdate{Status: models.EnrollmentStatusPaused})

	require.Len(t, queue.jobs, 1)
	job := queue.jobs[0]
	assert.Equal(t, AuditJobType, job.Type)

	require.NoError(t, svc.Handle(context.Background(), job))
	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Equal(t, "req-42", entry.RequestID)
	assert.Equal(t, "sid-7", *entry.SessionID)
	assert.Equal(t, "12", *entry.ResourceID)
	assert.JSONEq(t, `{"status":"paused"}`, string(entry.Payload))
}

func TestAuditServiceIsOptional(t *testing.T) {
	var svc *AuditService
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), models.AuditActionCourseDelete, "course", 1, nil)
	})

	failing := NewAuditService(nil, &auditQueueFake{err: errors.New("queue stopped")}, nil)
	assert.NotPanics(t, func() {
		failing.Record(context.Background(), models.AuditActionCourseDelete, "course", 1, nil)
	})

	assert.Error(t, failing.Handle(context.Background(), jobs.Job{ID: "x", Payload: "nope"}))
}
