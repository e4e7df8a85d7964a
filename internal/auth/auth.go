// Package auth signs users up, verifies their passwords and tracks login
// sessions. Sessions are opaque random tokens held in a TTL cache, so a
// restart logs everyone out.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrNoSession          = errors.New("no such session")
)

// Session binds a token to the user who logged in with it.
type Session struct {
	Token     string
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

type Options struct {
	TTL  time.Duration
	Cost int // bcrypt cost, bcrypt.DefaultCost when zero
}

type Service struct {
	users    storage.UserStore
	sessions cache.Cache[Session]
	ttl      time.Duration
	cost     int
	logger   *log.Logger
	// compared against when the username is unknown so that both failure
	// paths cost one bcrypt comparison
	dummyHash []byte
}

func NewService(users storage.UserStore, sessions cache.Cache[Session], opts Options, logger *log.Logger) (*Service, error) {
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("fintrack-placeholder"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hashing: %w", err)
	}
	return &Service{
		users:     users,
		sessions:  sessions,
		ttl:       opts.TTL,
		cost:      cost,
		logger:    logger.WithComponent(log.ComponentAuth),
		dummyHash: dummy,
	}, nil
}

// SignUp creates a user. Invalid usernames or passwords are reported with
// core.ErrInvalidUsername or core.ErrInvalidPassword.
func (s *Service) SignUp(ctx context.Context, username, password string) (core.User, error) {
	name, err := core.NormalizeUsername(username)
	if err != nil {
		return core.User{}, err
	}
	if err := core.ValidatePassword(password); err != nil {
		return core.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, name, string(hash))
	if errors.Is(err, storage.ErrDuplicateUser) {
		return core.User{}, ErrUsernameTaken
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User signed up", log.FieldOwner, u.ID, log.FieldUsername, u.Username)
	return u, nil
}

// Login verifies the credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.UserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.logger.InfoContext(ctx, "Login rejected", log.FieldUsername, username)
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.InfoContext(ctx, "Login rejected", log.FieldUsername, username)
		return Session{}, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return Session{}, err
	}
	sess := Session{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	s.sessions.Set(token, sess)

	s.logger.InfoContext(ctx, "User logged in", log.FieldOwner, u.ID)
	return sess, nil
}

// Resolve returns the live session for token.
func (s *Service) Resolve(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	sess, ok := s.sessions.Get(token)
	if !ok {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
