package auth

import (
	"context"
	"testing"
	"time"

	"github.com/adilzhan/gameportal/internal/config"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		SessionSecret: "test-secret-test-secret-test-secret",
		SessionTTL:    time.Hour,
		CookieName:    "portal_session",
		BcryptCost:    bcrypt.MinCost,
	}
}

type fakeUserStore struct {
	users    map[uuid.UUID]User
	sessions map[string]time.Time
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    map[uuid.UUID]User{},
		sessions: map[string]time.Time{},
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash string, displayName *string, isAdmin bool) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return User{}, ErrEmailAlreadyExists
		}
	}
	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) FindUserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (f *fakeUserStore) GetUser(_ context.Context, id uuid.UUID) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, user User) (User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return User{}, ErrUserNotFound
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) StoreSession(_ context.Context, _ uuid.UUID, tokenHash string, expiresAt time.Time) error {
	f.sessions[tokenHash] = expiresAt
	return nil
}

func (f *fakeUserStore) SessionExists(_ context.Context, tokenHash string) (bool, error) {
	exp, ok := f.sessions[tokenHash]
	return ok && exp.After(time.Now()), nil
}

func (f *fakeUserStore) DeleteSession(_ context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

func seedUser(t *testing.T, store *fakeUserStore, email, password string, admin bool) User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := store.CreateUser(context.Background(), email, string(hashed), nil, admin)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLoginIssuesValidSession(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, testConfig())
	seedUser(t, store, "admin@example.com", "correct-horse", true)

	result, err := service.Login(context.Background(), LoginInput{Email: "Admin@Example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected session token")
	}
	if result.User.PasswordHash != "" {
		t.Fatalf("password hash leaked in result")
	}

	claims, err := service.ValidateSession(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("ValidateSession returned error: %v", err)
	}
	if !claims.IsAdmin {
		t.Fatalf("expected admin claims")
	}
	if claims.Email != "admin@example.com" {
		t.Fatalf("unexpected email claim: %s", claims.Email)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, testConfig())
	seedUser(t, store, "admin@example.com", "correct-horse", true)

	_, err := service.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: "battery-staple"})
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, testConfig())
	seedUser(t, store, "admin@example.com", "correct-horse", false)

	result, err := service.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := service.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if _, err := service.ValidateSession(context.Background(), result.Token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestValidateSessionRejectsTamperedToken(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, testConfig())
	seedUser(t, store, "admin@example.com", "correct-horse", false)

	result, err := service.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	tampered := result.Token + "x"
	if _, err := service.ValidateSession(context.Background(), tampered); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestValidateSessionExpires(t *testing.T) {
	store := newFakeUserStore()
	cfg := testConfig()
	service := NewService(store, cfg)
	seedUser(t, store, "admin@example.com", "correct-horse", false)

	result, err := service.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	service.nowFunc = func() time.Time { return time.Now().Add(cfg.SessionTTL + time.Minute) }

	if _, err := service.ValidateSession(context.Background(), result.Token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for expired session, got %v", err)
	}
}

func TestUpdateUserChangesPasswordAndAdminFlag(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, testConfig())
	user := seedUser(t, store, "editor@example.com", "first-password", false)

	newPassword := "second-password"
	makeAdmin := true
	updated, err := service.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		Password: &newPassword,
		IsAdmin:  &makeAdmin,
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if !updated.IsAdmin {
		t.Fatalf("expected admin flag set")
	}

	if _, err := service.Login(context.Background(), LoginInput{Email: "editor@example.com", Password: "second-password"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := service.Login(context.Background(), LoginInput{Email: "editor@example.com", Password: "first-password"}); err != ErrInvalidCredentials {
		t.Fatalf("expected old password rejected, got %v", err)
	}
}

func TestCreateUserEnforcesPolicy(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, testConfig())

	if _, err := service.CreateUser(context.Background(), "bad-email", "long-enough-pass", nil, false); err != ErrWeakCredentials {
		t.Fatalf("expected ErrWeakCredentials for bad email, got %v", err)
	}
	if _, err := service.CreateUser(context.Background(), "ok@example.com", "short", nil, false); err != ErrWeakCredentials {
		t.Fatalf("expected ErrWeakCredentials for short password, got %v", err)
	}
}
