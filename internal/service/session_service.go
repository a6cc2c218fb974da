package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
)

// SessionStore persists sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error
}

type sessionObserver interface {
	RecordSessionLoad(hit bool)
}

// SessionConfig configures cookie signing and notice lifetimes.
type SessionConfig struct {
	Secret    string
	TTL       time.Duration
	NoticeTTL time.Duration
	Issuer    string
}

// SessionService issues session cookies and keeps per-browser form state.
type SessionService struct {
	store    SessionStore
	cfg      SessionConfig
	logger   *zap.Logger
	observer sessionObserver
	now      func() time.Time
}

// NewSessionService constructs SessionService.
func NewSessionService(store SessionStore, cfg SessionConfig, logger *zap.Logger) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.NoticeTTL <= 0 {
		cfg.NoticeTTL = 3 * time.Second
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "course-enrollment-portal"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// SetObserver attaches a hit/miss observer.
func (s *SessionService) SetObserver(observer sessionObserver) {
	s.observer = observer
}

// TTL returns the session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.cfg.TTL
}

// NewID returns a fresh session id.
func (s *SessionService) NewID() string {
	return uuid.NewString()
}

// Issue signs a cookie token for session id.
func (s *SessionService) Issue(id string) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.cfg.TTL)
	claims := &models.SessionClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates a cookie token and returns the session id.
func (s *SessionService) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims.SessionID, nil
}

// Load returns session id, or a fresh session when the store has none.
// Expired notices are dropped.
func (s *SessionService) Load(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.store.Get(ctx, id)
	if s.observer != nil {
		s.observer.RecordSessionLoad(err == nil)
	}
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("failed to load session, starting fresh", zap.String("session_id", id), zap.Error(err))
		}
		session = models.NewSession(id)
	}
	if session.Notices == nil {
		session.Notices = map[models.NoticeScope]models.Notice{}
	}
	now := s.now()
	for scope, notice := range session.Notices {
		if notice.Expired(now) {
			delete(session.Notices, scope)
		}
	}
	return session, nil
}

// Save persists session and refreshes its lifetime.
func (s *SessionService) Save(ctx context.Context, session *models.Session) error {
	session.LastUpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session, s.cfg.TTL); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save session")
	}
	return nil
}

// Notify sets the notice of scope. Validation notices stay until the next
// command on the same form; the others expire after the notice TTL.
func (s *SessionService) Notify(session *models.Session, scope models.NoticeScope, kind models.NoticeKind, message string) {
	notice := models.Notice{Kind: kind, Message: message}
	if kind != models.NoticeValidation {
		notice.ExpiresAt = s.now().Add(s.cfg.NoticeTTL)
	}
	session.Notices[scope] = notice
}

// NotifyError converts a command error into a notice on scope.
func (s *SessionService) NotifyError(session *models.Session, scope models.NoticeScope, err error) {
	kind, message := NoticeFromError(err)
	s.Notify(session, scope, kind, message)
}

// Clear removes the notice of scope.
func (s *SessionService) Clear(session *models.Session, scope models.NoticeScope) {
	delete(session.Notices, scope)
}

// NoticeFromError classifies err for display. Anything that is not a local
// validation failure is shown as a remote error; internal failures use the
// generic fallback message.
func NoticeFromError(err error) (models.NoticeKind, string) {
	appErr := appErrors.FromError(err)
	switch {
	case appErrors.IsValidation(appErr):
		return models.NoticeValidation, appErr.Message
	case appErrors.IsRemote(appErr), appErrors.HasCode(appErr, appErrors.ErrNotFound.Code):
		return models.NoticeRemote, appErr.Message
	default:
		return models.NoticeRemote, appErrors.FallbackRemoteMessage
	}
}
