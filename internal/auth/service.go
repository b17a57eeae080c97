package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adilzhan/gameportal/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxPasswordLength = 72 // bcrypt limit
	minPasswordLength = 8
)

// userStore abstracts the persistence layer.
type userStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, displayName *string, isAdmin bool) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	StoreSession(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	SessionExists(ctx context.Context, tokenHash string) (bool, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// Service encapsulates session authentication and user administration.
type Service struct {
	store    userStore
	cfg      config.AuthConfig
	nowFunc  func() time.Time
	idIssuer string
	parser   *jwt.Parser
}

// NewService creates a Service with dependencies.
func NewService(store userStore, cfg config.AuthConfig) *Service {
	return &Service{
		store:    store,
		cfg:      cfg,
		nowFunc:  time.Now,
		idIssuer: "gameportal",
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})),
	}
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// SessionResult contains the authenticated user and the session cookie value.
type SessionResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// UserClaims describes the validated identity extracted from a session token.
type UserClaims struct {
	UserID    uuid.UUID
	Email     string
	IsAdmin   bool
	ExpiresAt time.Time
}

// Login authenticates credentials and issues a session.
func (s *Service) Login(ctx context.Context, input LoginInput) (SessionResult, error) {
	if err := validateCredentials(input.Email, input.Password); err != nil {
		return SessionResult{}, ErrInvalidCredentials
	}

	user, err := s.store.FindUserByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return SessionResult{}, ErrInvalidCredentials
		}
		return SessionResult{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return SessionResult{}, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// Logout revokes the session backing the given cookie value.
func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrUnauthorized
	}
	return s.store.DeleteSession(ctx, s.hashToken(token))
}

// ValidateSession verifies the cookie token and confirms the session is
// still live server-side, so logout takes effect immediately.
func (s *Service) ValidateSession(ctx context.Context, token string) (UserClaims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return UserClaims{}, err
	}

	exists, err := s.store.SessionExists(ctx, s.hashToken(token))
	if err != nil {
		return UserClaims{}, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return UserClaims{}, ErrUnauthorized
	}

	return claims, nil
}

// CreateUser provisions an operator account (admin user-management screen).
func (s *Service) CreateUser(ctx context.Context, email, password string, displayName *string, isAdmin bool) (User, error) {
	if err := validateCredentials(email, password); err != nil {
		return User{}, err
	}

	hashed, err := hashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, strings.ToLower(email), hashed, displayName, isAdmin)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return User{}, ErrEmailAlreadyExists
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return user.SafeUser(), nil
}

// ListUsers returns all operator accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].SafeUser()
	}
	return users, nil
}

// UpdateUserInput carries optional user mutations.
type UpdateUserInput struct {
	DisplayName *string
	Password    *string
	IsAdmin     *bool
}

// UpdateUser applies the provided mutations to an account.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}

	if input.DisplayName != nil {
		user.DisplayName = input.DisplayName
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength || len(*input.Password) > maxPasswordLength {
			return User{}, ErrWeakCredentials
		}
		hashed, err := hashPassword(*input.Password, s.cfg.BcryptCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
	}

	updated, err := s.store.UpdateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	return updated.SafeUser(), nil
}

// DeleteUser removes an operator account.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteUser(ctx, id)
}

// CookieName reports the configured session cookie name.
func (s *Service) CookieName() string { return s.cfg.CookieName }

// CookieSecure reports whether the session cookie requires TLS.
func (s *Service) CookieSecure() bool { return s.cfg.CookieSecure }

// SessionTTL reports the configured session lifetime.
func (s *Service) SessionTTL() time.Duration { return s.cfg.SessionTTL }

func (s *Service) issueSession(ctx context.Context, user User) (SessionResult, error) {
	now := s.nowFunc()
	expiresAt := now.Add(s.cfg.SessionTTL)

	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"iss":      s.idIssuer,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
		"jti":      uuid.NewString(),
		"email":    user.Email,
		"is_admin": user.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return SessionResult{}, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.store.StoreSession(ctx, user.ID, s.hashToken(signed), expiresAt); err != nil {
		return SessionResult{}, fmt.Errorf("store session: %w", err)
	}

	return SessionResult{
		User:      user.SafeUser(),
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) parseToken(tokenString string) (UserClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return UserClaims{}, ErrUnauthorized
	}

	parsed, err := s.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SessionSecret), nil
	})
	if err != nil || !parsed.Valid {
		return UserClaims{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, ErrUnauthorized
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return UserClaims{}, ErrUnauthorized
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return UserClaims{}, ErrUnauthorized
	}

	email, _ := claims["email"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	expFloat, okExp := claims["exp"].(float64)
	if !okExp {
		return UserClaims{}, ErrUnauthorized
	}
	exp := time.Unix(int64(expFloat), 0)
	if exp.Before(s.nowFunc()) {
		return UserClaims{}, ErrUnauthorized
	}

	return UserClaims{
		UserID:    userID,
		Email:     email,
		IsAdmin:   isAdmin,
		ExpiresAt: exp,
	}, nil
}

func (s *Service) hashToken(token string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.SessionSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func validateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrWeakCredentials
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakCredentials
	}
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
