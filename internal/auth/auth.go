package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

// Manager authenticates users against the ERP and opens chat sessions.
type Manager struct {
	url   string
	erpDB string

	store    *CredentialStore
	uidCache *UIDCache
	sessions *session.Manager
	logger   *zap.Logger

	// dial hooks exist for tests; production uses the xmlrpc dialers.
	dial       func(ctx context.Context, url, db, username, password string, logger *zap.Logger) (*odoo.Client, error)
	dialCached func(url, db string, uid int, password string, logger *zap.Logger) (*odoo.Client, error)
}

// NewManager wires the login stack.
func NewManager(url, erpDB string, store *CredentialStore, uidCache *UIDCache, sessions *session.Manager, logger *zap.Logger) *Manager {
	return &Manager{
		url:        url,
		erpDB:      erpDB,
		store:      store,
		uidCache:   uidCache,
		sessions:   sessions,
		logger:     logger,
		dial:       odoo.Dial,
		dialCached: odoo.DialCached,
	}
}

// Login authenticates the user and returns a ready chat session. An empty
// password falls back to the remembered credential. Successful logins
// refresh both the remembered credential and the uid cache.
func (m *Manager) Login(ctx context.Context, username, password string) (*session.Session, error) {
	remembered := false
	if password == "" {
		stored, err := m.store.Load(username)
		if err != nil {
			return nil, fmt.Errorf("password required: %w", err)
		}
		password = stored
		remembered = true
	}

	client, err := m.connect(ctx, username, password)
	if err != nil {
		if remembered && errors.Is(err, odoo.ErrAuthFailed) {
			// The remembered password no longer works; drop it so the next
			// attempt prompts cleanly.
			if delErr := m.store.Delete(username); delErr != nil {
				m.logger.Warn("failed to drop stale credential", zap.Error(delErr))
			}
		}
		return nil, err
	}

	if err := m.store.Save(username, password); err != nil {
		m.logger.Warn("failed to remember credential", zap.Error(err))
	}
	if err := m.uidCache.Put(username, m.erpDB, client.UID()); err != nil {
		m.logger.Warn("failed to cache uid", zap.Error(err))
	}

	employee, err := client.CurrentUserEmployee(ctx)
	if err != nil {
		m.logger.Warn("employee profile unavailable at login",
			zap.String("username", username),
			zap.Error(err))
		employee = odoo.Record{}
	}

	isManager := false
	if id := employee.Int("id"); id != 0 && !employee.Bool("is_partner") {
		isManager, err = client.IsManager(ctx, id)
		if err != nil {
			m.logger.Warn("manager check failed", zap.Error(err))
		}
	}

	return m.sessions.Create(username, client, employee, isManager), nil
}

// connect tries the cached uid first and falls back to a full authenticate.
func (m *Manager) connect(ctx context.Context, username, password string) (*odoo.Client, error) {
	if uid, err := m.uidCache.Get(username, m.erpDB); err == nil {
		client, dialErr := m.dialCached(m.url, m.erpDB, uid, password, m.logger)
		if dialErr == nil {
			if valErr := client.ValidateSession(ctx); valErr == nil {
				m.logger.Info("login via cached session",
					zap.String("username", username),
					zap.Int("uid", uid))
				return client, nil
			}
		}
		m.uidCache.Delete(username, m.erpDB)
	}

	return m.dial(ctx, m.url, m.erpDB, username, password, m.logger)
}

// Logout ends the session and forgets the cached uid.
func (m *Manager) Logout(sessionID string) {
	s, ok := m.sessions.Get(sessionID)
	if !ok {
		return
	}
	m.uidCache.Delete(s.Username, m.erpDB)
	m.sessions.Delete(sessionID)
	m.logger.Info("session closed",
		zap.String("session_id", sessionID),
		zap.String("username", s.Username))
}
