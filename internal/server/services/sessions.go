// Package services contains server-side business logic. SessionService owns
// one asset store per client session, issues session tokens, sweeps idle
// sessions and persists processed-asset metadata.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/dbx"
	"github.com/dmitrijs2005/upscaler/internal/logging"
	"github.com/dmitrijs2005/upscaler/internal/server/assets"
	"github.com/dmitrijs2005/upscaler/internal/server/auth"
	"github.com/dmitrijs2005/upscaler/internal/server/config"
	"github.com/dmitrijs2005/upscaler/internal/server/models"
	"github.com/dmitrijs2005/upscaler/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Session is a live client session.
type Session struct {
	ID        string
	Store     *assets.Store
	CreatedAt time.Time

	lastSeen time.Time
}

// Canceller aborts the processing jobs of a session.
type Canceller interface {
	CancelSession(sessionID string) int
}

type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    assets.PreviewRegistry
	logger      logging.Logger
	jwtSecret   []byte
	validity    time.Duration
	canceller   Canceller

	mu       sync.Mutex
	sessions map[string]*Session

	// persistMu orders Record against Clear so a late result cannot
	// re-insert metadata Clear has just deleted.
	persistMu sync.RWMutex

	now   func() time.Time
	newID func() string
}

// NewSessionService builds the service. A nil db disables persistence.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, registry assets.PreviewRegistry, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		registry:    registry,
		logger:      logger.With("module", "sessions"),
		jwtSecret:   []byte(cfg.SecretKey),
		validity:    cfg.SessionValidityDuration,
		sessions:    make(map[string]*Session),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// SetCanceller wires the processor in. It is set after construction because
// the processor records its results through this service.
func (s *SessionService) SetCanceller(c Canceller) {
	s.canceller = c
}

func (s *SessionService) persistent() bool {
	return s.db != nil && s.repomanager != nil
}

func (s *SessionService) newSession(id string, at time.Time) *Session {
	return &Session{
		ID:        id,
		Store:     assets.NewStore(s.registry, s.logger.With("session", id)),
		CreatedAt: at,
		lastSeen:  at,
	}
}

// Create starts a session and returns it with a signed token.
func (s *SessionService) Create(ctx context.Context) (*Session, string, error) {
	now := s.now()
	sess := s.newSession(s.newID(), now)

	if s.persistent() {
		rec := &models.Session{ID: sess.ID, CreatedAt: now, LastSeenAt: now}
		if err := s.repomanager.Sessions(s.db).Ensure(ctx, rec); err != nil {
			return nil, "", fmt.Errorf("error saving session: %w", err)
		}
	}

	token, err := auth.GenerateToken(sess.ID, s.jwtSecret, s.validity)
	if err != nil {
		return nil, "", fmt.Errorf("error generating token: %w", err)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info(ctx, "session created", "session", sess.ID)
	return sess, token, nil
}

// Authenticate resolves a bearer token to its session.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*Session, error) {
	id, err := auth.GetSessionIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get returns the live session, restoring it when the id is unknown to this
// process. A restored session starts with an empty asset list and the
// persisted processed metadata, without result bytes.
func (s *SessionService) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	restored, err := s.restore(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another request may have restored it meanwhile
	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		return sess, nil
	}
	s.sessions[id] = restored
	return restored, nil
}

func (s *SessionService) restore(ctx context.Context, id string) (*Session, error) {
	now := s.now()
	sess := s.newSession(id, now)

	if !s.persistent() {
		s.logger.Info(ctx, "session started from token", "session", id)
		return sess, nil
	}

	var records []*models.ProcessedAsset
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sessions(tx)
		if err := repo.Ensure(ctx, &models.Session{ID: id, CreatedAt: now, LastSeenAt: now}); err != nil {
			return err
		}
		stored, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		sess.CreatedAt = stored.CreatedAt

		records, err = s.repomanager.Processed(tx).ListBySession(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error restoring session: %w", err)
	}

	for _, r := range records {
		sess.Store.AddProcessedAsset(fromModel(r))
	}
	s.logger.Info(ctx, "session restored", "session", id, "processed", len(records))
	return sess, nil
}

// Record persists the metadata of a processed result. It implements
// processing.Recorder. Results that no longer belong to a live session's
// store (the session was cleared, swept or replaced) are not written.
func (s *SessionService) Record(ctx context.Context, sessionID string, p assets.ProcessedAsset) error {
	if !s.persistent() {
		return nil
	}

	s.persistMu.RLock()
	defer s.persistMu.RUnlock()

	if !s.holds(sessionID, p.ID) {
		s.logger.Info(ctx, "skipping result of ended session", "session", sessionID, "result", p.ID)
		return nil
	}

	now := s.now()
	rec := toModel(sessionID, p)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sessions(tx)
		if err := repo.Ensure(ctx, &models.Session{ID: sessionID, CreatedAt: now, LastSeenAt: now}); err != nil {
			return err
		}
		if err := repo.Touch(ctx, sessionID, now); err != nil {
			return err
		}
		return s.repomanager.Processed(tx).Save(ctx, rec)
	})
}

// Clear ends a session: running jobs are cancelled, every preview handle is
// revoked and persisted metadata is deleted.
func (s *SessionService) Clear(ctx context.Context, id string) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.release(ctx, sess)
	}

	if s.persistent() {
		n, err := s.repomanager.Processed(s.db).DeleteBySession(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting processed assets: %w", err)
		}
		s.logger.Info(ctx, "session cleared", "session", id, "deleted", n)
		return nil
	}

	if !ok {
		return fmt.Errorf("session %s: %w", id, common.ErrorNotFound)
	}
	s.logger.Info(ctx, "session cleared", "session", id)
	return nil
}

// Sweep drops sessions idle for longer than the token validity. Their stores
// are cleared; persisted metadata is kept so a later request can restore it.
func (s *SessionService) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.validity)

	s.mu.Lock()
	var idle []*Session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		s.release(ctx, sess)
	}
	if len(idle) > 0 {
		s.logger.Info(ctx, "idle sessions swept", "count", len(idle))
	}
	return len(idle)
}

// Close releases every session. Persisted data is untouched.
func (s *SessionService) Close(ctx context.Context) {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		s.release(ctx, sess)
	}
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionService) release(ctx context.Context, sess *Session) {
	if s.canceller != nil {
		s.canceller.CancelSession(sess.ID)
	}
	sess.Store.Close(ctx)
}

// holds reports whether the live session id still owns processed result pid.
func (s *SessionService) holds(id, pid string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	_, err := sess.Store.GetProcessed(pid)
	return err == nil
}

// IsAuthError reports whether err came from token validation.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired)
}
