// Package session persists admin console sessions and the audit log in
// SQLite.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

var ErrNotFound = errors.New("session not found")

// Session binds a console cookie to a backend access token.
type Session struct {
	ID          string     `db:"id" json:"-"`
	AccessToken string     `db:"access_token" json:"-"`
	TokenType   string     `db:"token_type" json:"token_type"`
	UserJSON    string     `db:"user_json" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	User        model.User `db:"-" json:"user"`
}

// Entry is one audited admin action. Client IPs are stored hashed.
type Entry struct {
	ID        int64     `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	HashedIP  string    `db:"hashed_ip" json:"hashed_ip"`
	Action    string    `db:"action" json:"action"`
	Target    string    `db:"target" json:"target,omitempty"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

type Store struct {
	db   *sqlx.DB
	ttl  time.Duration
	salt string
	now  func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	access_token TEXT NOT NULL,
	token_type TEXT NOT NULL DEFAULT 'Bearer',
	user_json TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expires_at ON sessions (expires_at);

CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	hashed_ip TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	target TEXT NOT NULL DEFAULT '',
	timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_log_timestamp ON audit_log (timestamp);

CREATE TABLE IF NOT EXISTS pinned_sessions (
	name TEXT PRIMARY KEY,
	session_id TEXT NOT NULL
);
`

// Open creates the database at path if needed and applies the schema.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, ttl: ttl, salt: newSalt(), now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func newSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("failed to generate hashing salt")
	}
	return hex.EncodeToString(b)
}

// HashIP hashes ip with the per-process salt so audit rows can be correlated
// without storing addresses.
func (s *Store) HashIP(ip string) string {
	h := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(h[:])[:16]
}

// Create stores a new session for auth. The session never outlives the
// backend token when its expiry can be read.
func (s *Store) Create(ctx context.Context, auth model.AuthResponse) (*Session, error) {
	user, err := json.Marshal(auth.User)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	if exp, ok := TokenExpiry(auth.AccessToken); ok && exp.Before(expires) {
		expires = exp.UTC()
	}
	tokenType := auth.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	sess := &Session{
		ID:          uuid.NewString(),
		AccessToken: auth.AccessToken,
		TokenType:   tokenType,
		UserJSON:    string(user),
		CreatedAt:   now,
		ExpiresAt:   expires,
		User:        auth.User,
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO sessions (id, access_token, token_type, user_json, created_at, expires_at)
		VALUES (:id, :access_token, :token_type, :user_json, :created_at, :expires_at)
	`, sess)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Get returns a live session or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.GetContext(ctx, &sess, `
		SELECT id, access_token, token_type, user_json, created_at, expires_at
		FROM sessions WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !s.now().Before(sess.ExpiresAt) {
		return nil, ErrNotFound
	}
	if err := json.Unmarshal([]byte(sess.UserJSON), &sess.User); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &sess, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Pin remembers id under name, replacing any earlier pin. The CLI keeps its
// login this way.
func (s *Store) Pin(ctx context.Context, name, id string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pinned_sessions (name, session_id) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET session_id = excluded.session_id
	`, name, id)
	if err != nil {
		return fmt.Errorf("pin session: %w", err)
	}
	return nil
}

// Pinned returns the live session pinned under name.
func (s *Store) Pinned(ctx context.Context, name string) (*Session, error) {
	var id string
	err := s.db.GetContext(ctx, &id, `SELECT session_id FROM pinned_sessions WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pinned session: %w", err)
	}
	return s.Get(ctx, id)
}

// Unpin forgets name and deletes the session it pointed at.
func (s *Store) Unpin(ctx context.Context, name string) error {
	sess, err := s.Pinned(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if sess != nil {
		if err := s.Delete(ctx, sess.ID); err != nil {
			return err
		}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pinned_sessions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("unpin session: %w", err)
	}
	return nil
}

// Record appends e to the audit log, stamping it when Timestamp is zero.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO audit_log (session_id, hashed_ip, action, target, timestamp)
		VALUES (:session_id, :hashed_ip, :action, :target, :timestamp)
	`, e)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest audit entries first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	entries := []Entry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, session_id, hashed_ip, action, target, timestamp
		FROM audit_log
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// Cleanup drops expired sessions and audit rows older than retention.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (sessions, entries int64, err error) {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	sessions, _ = res.RowsAffected()

	res, err = s.db.ExecContext(ctx, `DELETE FROM audit_log WHERE timestamp < ?`, now.Add(-retention))
	if err != nil {
		return sessions, 0, fmt.Errorf("cleanup audit log: %w", err)
	}
	entries, _ = res.RowsAffected()

	if sessions > 0 || entries > 0 {
		log.Info().Msgf("Cleanup: removed %d expired sessions and %d audit entries", sessions, entries)
	}
	return sessions, entries, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it. The backend
// owns the signing key; the console only needs to know when to stop trying.
func TokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
