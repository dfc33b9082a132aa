// Package authstore centralizes bearer-token lifecycle management. All
// session reads and writes go through one AuthStore; nothing else touches
// the persisted record. Expiry is passive: it is checked on read, and a
// stale or corrupt record self-heals to "logged out".
package authstore

import (
	"encoding/json"
	"time"

	"grandson-client/internal/model"
	"grandson-client/internal/store"

	"github.com/rs/zerolog"
)

const (
	// storageKey is the fixed key the session record is persisted under.
	storageKey = "grandson_auth"

	// sessionTTL is the fixed validity window granted at store time.
	sessionTTL = 24 * time.Hour

	// maxSaveAttempts bounds persistence retries; browser-style storage
	// can transiently fail (quota, private mode).
	maxSaveAttempts = 3
)

// SaveResult reports the outcome of persisting a session, including how
// many retries were needed, so login flows can distinguish "session save
// failed" from "wrong credentials".
type SaveResult struct {
	Success bool
	Err     error
	Retries int
}

// AuthStore holds the bearer token and minimal user record.
type AuthStore struct {
	store  store.Store
	logger zerolog.Logger
	now    func() time.Time
}

// New creates an auth store over the given key-value store.
func New(s store.Store, logger zerolog.Logger) *AuthStore {
	return &AuthStore{
		store:  s,
		logger: logger.With().Str("component", "auth-store").Logger(),
		now:    time.Now,
	}
}

// Save persists a new session for token and user. The expiry is computed
// here: issuedAt + 24h. The write is retried up to maxSaveAttempts times.
func (a *AuthStore) Save(token string, user model.User) SaveResult {
	issuedAt := a.now()
	session := model.AuthSession{
		Token:     token,
		User:      user,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(sessionTTL),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return SaveResult{Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		lastErr = a.store.Set(storageKey, string(data))
		if lastErr == nil {
			a.logger.Debug().
				Str("username", user.Username).
				Int("attempt", attempt).
				Msg("session persisted")
			return SaveResult{Success: true, Retries: attempt - 1}
		}
		a.logger.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Msg("session write failed")
	}

	return SaveResult{Err: lastErr, Retries: maxSaveAttempts - 1}
}

// Session returns the current session, or nil when none is stored, the
// record is corrupt, or it has expired. Corrupt and expired records are
// cleared as a side effect.
func (a *AuthStore) Session() *model.AuthSession {
	raw, ok, err := a.store.Get(storageKey)
	if err != nil || !ok {
		return nil
	}

	var session model.AuthSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		a.logger.Warn().Err(err).Msg("corrupt session record, clearing")
		a.Clear()
		return nil
	}

	if !session.Valid(a.now()) {
		a.logger.Debug().
			Time("expires_at", session.ExpiresAt).
			Msg("session expired, clearing")
		a.Clear()
		return nil
	}

	return &session
}

// Token returns the bearer token of the current session, or an empty
// string when no valid session exists.
func (a *AuthStore) Token() string {
	if session := a.Session(); session != nil {
		return session.Token
	}
	return ""
}

// IsAuthenticated reports whether a valid session exists.
func (a *AuthStore) IsAuthenticated() bool {
	return a.Session() != nil
}

// Clear removes any stored session.
func (a *AuthStore) Clear() error {
	return a.store.Delete(storageKey)
}
