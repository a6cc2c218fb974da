package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/repository"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
)

type failingSessionStore struct{}

func (failingSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return nil, errors.New("redis down")
}

func (failingSessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	return errors.New("redis down")
}

type sessionObserverFake struct {
	hits, misses int
}

func (f *sessionObserverFake) RecordSessionLoad(hit bool) {
	if hit {
		f.hits++
	} else {
		f.misses++
	}
}

func newTestSessionService(now *time.Time) *SessionService {
	svc := NewSessionService(repository.NewMemorySessionRepository(), SessionConfig{Secret: "secret", TTL: time.Hour, NoticeTTL: 3 * time.Second}, nil)
	svc.now = func() time.Time { return *now }
	return svc
}

func TestSessionServiceTokenRoundTrip(t *testing.T) {
	now := time.Now()
	svc := newTestSessionService(&now)

	token, expiresAt, err := svc.Issue("sid-1")
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	id, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", id)

	_, err = svc.Parse(token + "x")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))

	other := NewSessionService(nil, SessionConfig{Secret: "other"}, nil)
	_, err = other.Parse(token)
	assert.Error(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.Parse(token)
	assert.Error(t, err, "expired tokens are rejected")
}

func TestSessionServiceNoticesExpire(t *testing.T) {
	now := time.Now()
	svc := newTestSessionService(&now)
	observer := &sessionObserverFake{}
	svc.SetObserver(observer)
	ctx := context.Background()

	session, err := svc.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, models.FormIdle, session.CourseForm.Mode)

	svc.NotifyError(session, models.ScopeEnrollForm, appErrors.Remote("Student is already enrolled in this course", nil))
	svc.NotifyError(session, models.ScopeCourses, appErrors.Validation("name required"))
	require.NoError(t, svc.Save(ctx, session))

	now = now.Add(2 * time.Second)
	session, err = svc.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "Student is already enrolled in this course", session.Notices[models.ScopeEnrollForm].Message)

	now = now.Add(2 * time.Second)
	session, err = svc.Load(ctx, "sid")
	require.NoError(t, err)
	_, remote := session.Notices[models.ScopeEnrollForm]
	assert.False(t, remote, "remote notices auto-dismiss")
	assert.Equal(t, "name required", session.Notices[models.ScopeCourses].Message, "validation notices stay")

	svc.Clear(session, models.ScopeCourses)
	assert.Empty(t, session.Notices)
	assert.Equal(t, 1, observer.misses)
	assert.Equal(t, 2, observer.hits)
}

func TestSessionServiceStoreFailure(t *testing.T) {
	svc := NewSessionService(failingSessionStore{}, SessionConfig{Secret: "s"}, nil)

	session, err := svc.Load(context.Background(), "sid")
	require.NoError(t, err, "a broken store still serves a fresh session")
	assert.Equal(t, "sid", session.ID)

	err = svc.Save(context.Background(), session)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
}

func TestNoticeFromError(t *testing.T) {
	kind, msg := NoticeFromError(appErrors.Validation("duplicate name"))
	assert.Equal(t, models.NoticeValidation, kind)
	assert.Equal(t, "duplicate name", msg)

	kind, msg = NoticeFromError(appErrors.Remote("Course not found", nil))
	assert.Equal(t, models.NoticeRemote, kind)
	assert.Equal(t, "Course not found", msg)

	_, msg = NoticeFromError(errors.New("unexpected"))
	assert.Equal(t, appErrors.FallbackRemoteMessage, msg)
}
