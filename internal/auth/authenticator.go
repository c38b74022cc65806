// Package auth is the identity provider for the admin panel: credential
// verification, JWT session tokens and a process-wide current-session state
// with change listeners.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong email/password pair.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidSession is returned for a missing, malformed or expired token.
var ErrInvalidSession = errors.New("invalid or expired session")

// Session is an authenticated admin session.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are the JWT claims carried by a session token.
type Claims struct {
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Authenticator signs admins in and out.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	Verify(token string) (*Claims, error)
}

// StaticAuthenticator verifies a single env-seeded admin credential and
// issues HS256 session tokens. The bcrypt hash comes from configuration; when
// no hash is configured sign-in always fails closed.
type StaticAuthenticator struct {
	adminEmail   string
	passwordHash string
	jwtSecret    []byte
	sessionTTL   time.Duration
	state        *SessionState
	logger       *logrus.Entry
}

var _ Authenticator = (*StaticAuthenticator)(nil)

// NewStaticAuthenticator builds the authenticator and its session state.
func NewStaticAuthenticator(adminEmail, passwordHash, jwtSecret string, sessionTTL time.Duration, logger *logrus.Logger) *StaticAuthenticator {
	return &StaticAuthenticator{
		adminEmail:   adminEmail,
		passwordHash: passwordHash,
		jwtSecret:    []byte(jwtSecret),
		sessionTTL:   sessionTTL,
		state:        NewSessionState(),
		logger:       logger.WithField("component", "auth"),
	}
}

// State exposes the process-wide current-session state.
func (a *StaticAuthenticator) State() *SessionState {
	return a.state
}

// SignIn verifies the credential and issues a session token. The session
// state is updated only here.
func (a *StaticAuthenticator) SignIn(_ context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if a.passwordHash == "" || email != a.adminEmail {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(a.sessionTTL)
	claims := &Claims{
		Email:     email,
		SessionID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	session := &Session{Token: token, Email: email, ExpiresAt: expiresAt}
	a.state.set(session)
	a.logger.WithField("email", email).Info("Admin signed in")
	return session, nil
}

// SignOut clears the current session.
func (a *StaticAuthenticator) SignOut(_ context.Context) error {
	a.state.set(nil)
	a.logger.Info("Admin signed out")
	return nil
}

// Verify parses and validates a session token.
func (a *StaticAuthenticator) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// HashPassword hashes a password for the ADMIN_PASSWORD_HASH setting.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
