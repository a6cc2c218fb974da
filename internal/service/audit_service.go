package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/pkg/jobs"
	"github.com/noah-isme/course-enrollment-portal/pkg/middleware/requestid"
)

// AuditJobType labels audit jobs on the queue.
const AuditJobType = "audit_log"

type sessionIDKey struct{}

// WithSessionID stores the UI session id on ctx for audit attribution.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext returns the session id stored by WithSessionID.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// auditRecorder receives successful commands. A nil recorder is valid.
type auditRecorder interface {
	Record(ctx context.Context, action, resource string, resourceID int64, payload interface{})
}

type auditQueue interface {
	Enqueue(job jobs.Job) error
}

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditService turns commands into audit log jobs and persists them from the
// queue workers. Failures are logged and never reach the caller.
type AuditService struct {
	queue  auditQueue
	store  auditStore
	logger *zap.Logger
}

// NewAuditService constructs an AuditService. queue may be attached later
// with SetQueue since the queue needs the service's Handle as its handler.
func NewAuditService(store auditStore, queue auditQueue, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{queue: queue, store: store, logger: logger}
}

// SetQueue attaches the dispatch queue.
func (s *AuditService) SetQueue(queue auditQueue) {
	s.queue = queue
}

// Record enqueues an audit entry for a successful command.
func (s *AuditService) Record(ctx context.Context, action, resource string, resourceID int64, payload interface{}) {
	if s == nil || s.queue == nil {
		return
	}
	entry := &models.AuditLog{
		ID:        uuid.NewString(),
		Action:    action,
		Resource:  resource,
		RequestID: requestid.FromContext(ctx),
	}
	if sid := SessionIDFromContext(ctx); sid != "" {
		entry.SessionID = &sid
	}
	if resourceID != 0 {
		rid := strconv.FormatInt(resourceID, 10)
		entry.ResourceID = &rid
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.logger.Warn("failed to encode audit payload", zap.String("action", action), zap.Error(err))
		} else {
			entry.Payload = raw
		}
	}

	if err := s.queue.Enqueue(jobs.Job{ID: entry.ID, Type: AuditJobType, Payload: entry}); err != nil {
		s.logger.Warn("failed to enqueue audit log", zap.String("action", action), zap.Error(err))
	}
}

// Handle persists one queued audit entry.
func (s *AuditService) Handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("audit job %s: unexpected payload %T", job.ID, job.Payload)
	}
	if s.store == nil {
		return nil
	}
	return s.store.Create(ctx, entry)
}

func recordAudit(ctx context.Context, recorder auditRecorder, action, resource string, resourceID int64, payload interface{}) {
	if recorder == nil {
		return
	}
	recorder.Record(ctx, action, resource, resourceID, payload)
}
