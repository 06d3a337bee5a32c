package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/movienight/internal/model"
)

// Sealer encrypts the token at rest. *secret.Box satisfies it.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// SessionStore keeps the single signed-in session of this client.
type SessionStore struct {
	db     *sql.DB
	sealer Sealer
}

// NewSessionStore creates a store. A nil sealer stores the token in clear.
func NewSessionStore(db *sql.DB, sealer Sealer) *SessionStore {
	return &SessionStore{db: db, sealer: sealer}
}

// Save replaces the stored session.
func (s *SessionStore) Save(sess model.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	token := []byte(sess.Token)
	sealed := false
	if s.sealer != nil {
		token, err = s.sealer.Seal(token)
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		sealed = true
	}

	var expires any
	if sess.ExpiresAt != nil {
		expires = sess.ExpiresAt.UTC()
	}
	savedAt := sess.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = s.db.Exec(
		`INSERT INTO session (id, token, sealed, user_json, expires_at, saved_at) VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET token = excluded.token, sealed = excluded.sealed,
		 user_json = excluded.user_json, expires_at = excluded.expires_at, saved_at = excluded.saved_at`,
		token, sealed, string(userJSON), expires, savedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored session, or nil if there is none.
func (s *SessionStore) Load() (*model.Session, error) {
	var (
		token    []byte
		sealed   bool
		userJSON string
		expires  sql.NullTime
		savedAt  time.Time
	)
	err := s.db.QueryRow(
		`SELECT token, sealed, user_json, expires_at, saved_at FROM session WHERE id = 1`,
	).Scan(&token, &sealed, &userJSON, &expires, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if sealed {
		if s.sealer == nil {
			return nil, fmt.Errorf("load session: token is sealed but no session key is configured")
		}
		token, err = s.sealer.Open(token)
		if err != nil {
			return nil, fmt.Errorf("open token: %w", err)
		}
	}

	sess := &model.Session{Token: string(token), SavedAt: savedAt}
	if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	if expires.Valid {
		t := expires.Time
		sess.ExpiresAt = &t
	}
	return sess, nil
}

// UpdateUser replaces the user snapshot of the stored session, if any.
func (s *SessionStore) UpdateUser(u model.User) error {
	userJSON, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE session SET user_json = ? WHERE id = 1`, string(userJSON)); err != nil {
		return fmt.Errorf("update session user: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
