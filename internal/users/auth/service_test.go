// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anlevn/tatami/internal/platform/apperr"
	"github.com/anlevn/tatami/internal/platform/sec"
	"github.com/anlevn/tatami/internal/users/auth"
)

// # Test Fakes

var errFakeNotFound = errors.New("not found")

type fakeAccountRepository struct {
	accounts []*auth.Account
}

func (repo *fakeAccountRepository) find(match func(*auth.Account) bool) (*auth.Account, error) {
	for _, account := range repo.accounts {
		if match(account) {
			return account, nil
		}
	}
	return nil, errFakeNotFound
}

func (repo *fakeAccountRepository) FindByID(_ context.Context, id string) (*auth.Account, error) {
	return repo.find(func(a *auth.Account) bool { return a.ID == id })
}

func (repo *fakeAccountRepository) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	return repo.find(func(a *auth.Account) bool { return a.Email == email })
}

func (repo *fakeAccountRepository) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	return repo.find(func(a *auth.Account) bool { return a.Username == username })
}

func (repo *fakeAccountRepository) Create(_ context.Context, account *auth.Account) error {
	repo.accounts = append(repo.accounts, account)
	return nil
}

func (repo *fakeAccountRepository) Update(_ context.Context, _ *auth.Account) error { return nil }

func (repo *fakeAccountRepository) UpdatePassword(_ context.Context, accountID, newHash string) error {
	account, err := repo.find(func(a *auth.Account) bool { return a.ID == accountID })
	if err != nil {
		return err
	}
	account.PasswordHash = newHash
	return nil
}

func (repo *fakeAccountRepository) SoftDelete(_ context.Context, _ string) error { return nil }

func (repo *fakeAccountRepository) MarkVerified(_ context.Context, accountID string) error {
	account, err := repo.find(func(a *auth.Account) bool { return a.ID == accountID })
	if err != nil {
		return err
	}
	account.IsVerified = true
	return nil
}

type fakeSessionRepository struct {
	sessions []*auth.Session
	revoked  []string
}

func (repo *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	repo.sessions = append(repo.sessions, session)
	return nil
}

func (repo *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked {
			return session, nil
		}
	}
	return nil, errFakeNotFound
}

func (repo *fakeSessionRepository) Revoke(_ context.Context, sessionID string) error {
	repo.revoked = append(repo.revoked, sessionID)
	for _, session := range repo.sessions {
		if session.ID == sessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessionRepository) RevokeAll(_ context.Context, accountID string) error {
	for _, session := range repo.sessions {
		if session.AccountID == accountID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessionRepository) RevokeOthers(_ context.Context, accountID, currentSessionID string) error {
	for _, session := range repo.sessions {
		if session.AccountID == accountID && session.ID != currentSessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessionRepository) DeleteExpired(_ context.Context) error { return nil }

type fakeTokenStore struct {
	entries map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{entries: make(map[string]string)}
}

func (store *fakeTokenStore) Set(_ context.Context, token, accountID string, _ time.Duration) error {
	store.entries[token] = accountID
	return nil
}

func (store *fakeTokenStore) Get(_ context.Context, token string) (string, error) {
	accountID, ok := store.entries[token]
	if !ok {
		return "", errFakeNotFound
	}
	return accountID, nil
}

func (store *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(store.entries, token)
	return nil
}

// fakeTokenProvider records every invitation code it was asked to embed.
type fakeTokenProvider struct {
	invitationCodes []string
}

func (provider *fakeTokenProvider) GenerateAccessToken(_, _, invitationCode string, _ time.Duration) (string, error) {
	provider.invitationCodes = append(provider.invitationCodes, invitationCode)
	return "signed-access-token", nil
}

// # Test Harness

type authWorld struct {
	accounts *fakeAccountRepository
	sessions *fakeSessionRepository
	resets   *fakeTokenStore
	verifies *fakeTokenStore
	tokens   *fakeTokenProvider
	service  *auth.Service
}

func newAuthWorld(t *testing.T) *authWorld {
	t.Helper()

	world := &authWorld{
		accounts: &fakeAccountRepository{},
		sessions: &fakeSessionRepository{},
		resets:   newFakeTokenStore(),
		verifies: newFakeTokenStore(),
		tokens:   &fakeTokenProvider{},
	}
	world.service = auth.NewService(world.accounts, world.sessions, world.resets, world.verifies, world.tokens)
	return world
}

// seedAccount registers an account with a real bcrypt hash.
func (world *authWorld) seedAccount(t *testing.T, username, email, password string) *auth.Account {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	account := &auth.Account{
		ID:           "account-" + username,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	world.accounts.accounts = append(world.accounts.accounts, account)
	return account
}

// # Registration

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with hashed password and verification token", func(t *testing.T) {
		world := newAuthWorld(t)

		account, err := world.service.Register(ctx, auth.RegisterInput{
			Username:    "kano",
			Email:       "kano@tatami.app",
			Password:    "correct horse battery",
			DisplayName: "Kano",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, account.ID)
		assert.NotEqual(t, "correct horse battery", account.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("correct horse battery", account.PasswordHash))
		assert.False(t, account.IsVerified)

		// A verification token was parked for the new account.
		assert.Len(t, world.verifies.entries, 1)
		for _, accountID := range world.verifies.entries {
			assert.Equal(t, account.ID, accountID)
		}
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		world := newAuthWorld(t)
		world.seedAccount(t, "kano", "kano@tatami.app", "pw-one")

		_, err := world.service.Register(ctx, auth.RegisterInput{
			Username: "someone-else",
			Email:    "kano@tatami.app",
			Password: "pw-two",
		})
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 409, appError.HTTPStatus)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		world := newAuthWorld(t)
		world.seedAccount(t, "kano", "kano@tatami.app", "pw-one")

		_, err := world.service.Register(ctx, auth.RegisterInput{
			Username: "kano",
			Email:    "other@tatami.app",
			Password: "pw-two",
		})
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 409, appError.HTTPStatus)
	})
}

// # Login

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue tokens and a tracked session", func(t *testing.T) {
		world := newAuthWorld(t)
		account := world.seedAccount(t, "kano", "kano@tatami.app", "secret-pw")

		session, err := world.service.Login(ctx, auth.LoginInput{
			Login:     "kano@tatami.app",
			Password:  "secret-pw",
			UserAgent: "tatami-test",
			IPAddress: "203.0.113.7",
		})
		require.NoError(t, err)

		assert.Equal(t, "signed-access-token", session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, account.ID, session.Account.ID)

		// The refresh token is stored hashed, never in the clear.
		require.Len(t, world.sessions.sessions, 1)
		tracked := world.sessions.sessions[0]
		assert.Equal(t, sec.HashToken(session.RefreshToken), tracked.TokenHash)
		assert.NotEqual(t, session.RefreshToken, tracked.TokenHash)
		assert.Equal(t, "tatami-test", tracked.UserAgent)
	})

	t.Run("username works as login too", func(t *testing.T) {
		world := newAuthWorld(t)
		world.seedAccount(t, "kano", "kano@tatami.app", "secret-pw")

		_, err := world.service.Login(ctx, auth.LoginInput{Login: "kano", Password: "secret-pw"})
		require.NoError(t, err)
	})

	t.Run("invitation code is embedded in the access token", func(t *testing.T) {
		world := newAuthWorld(t)
		world.seedAccount(t, "kano", "kano@tatami.app", "secret-pw")

		_, err := world.service.Login(ctx, auth.LoginInput{
			Login:          "kano",
			Password:       "secret-pw",
			InvitationCode: "INV-1234",
		})
		require.NoError(t, err)

		require.Len(t, world.tokens.invitationCodes, 1)
		assert.Equal(t, "INV-1234", world.tokens.invitationCodes[0])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		world := newAuthWorld(t)
		world.seedAccount(t, "kano", "kano@tatami.app", "secret-pw")

		_, err := world.service.Login(ctx, auth.LoginInput{Login: "kano", Password: "guess"})
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 401, appError.HTTPStatus)
		assert.Empty(t, world.sessions.sessions)
	})

	t.Run("unknown login is unauthorized, not a lookup error", func(t *testing.T) {
		world := newAuthWorld(t)

		_, err := world.service.Login(ctx, auth.LoginInput{Login: "ghost", Password: "whatever"})
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 401, appError.HTTPStatus)
	})
}

// # Session Rotation

func TestRefreshSession(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token and revokes the old session", func(t *testing.T) {
		world := newAuthWorld(t)
		world.seedAccount(t, "kano", "kano@tatami.app", "secret-pw")

		original, err := world.service.Login(ctx, auth.LoginInput{
			Login:          "kano",
			Password:       "secret-pw",
			InvitationCode: "INV-1234",
		})
		require.NoError(t, err)
		originalSessionID := world.sessions.sessions[0].ID

		rotated, err := world.service.RefreshSession(ctx, original.RefreshToken, "tatami-test", "203.0.113.7")
		require.NoError(t, err)

		assert.NotEqual(t, original.RefreshToken, rotated.RefreshToken)
		assert.Contains(t, world.sessions.revoked, originalSessionID)

		// Refreshed tokens never re-embed the invitation code.
		require.Len(t, world.tokens.invitationCodes, 2)
		assert.Equal(t, "", world.tokens.invitationCodes[1])

		// The burned refresh token cannot be replayed.
		_, err = world.service.RefreshSession(ctx, original.RefreshToken, "tatami-test", "203.0.113.7")
		require.Error(t, err)
	})

	t.Run("unknown refresh token is unauthorized", func(t *testing.T) {
		world := newAuthWorld(t)

		_, err := world.service.RefreshSession(ctx, "never-issued", "", "")
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 401, appError.HTTPStatus)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the session backing the refresh token", func(t *testing.T) {
		world := newAuthWorld(t)
		world.seedAccount(t, "kano", "kano@tatami.app", "secret-pw")

		session, err := world.service.Login(ctx, auth.LoginInput{Login: "kano", Password: "secret-pw"})
		require.NoError(t, err)

		require.NoError(t, world.service.Logout(ctx, session.RefreshToken))
		assert.True(t, world.sessions.sessions[0].IsRevoked)
	})

	t.Run("unknown token logs out without error", func(t *testing.T) {
		world := newAuthWorld(t)
		assert.NoError(t, world.service.Logout(ctx, "never-issued"))
	})
}

// # Password Recovery

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("reset flow updates the hash and revokes every session", func(t *testing.T) {
		world := newAuthWorld(t)
		account := world.seedAccount(t, "kano", "kano@tatami.app", "old-pw")

		_, err := world.service.Login(ctx, auth.LoginInput{Login: "kano", Password: "old-pw"})
		require.NoError(t, err)

		token, err := world.service.RequestPasswordReset(ctx, "kano@tatami.app")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		require.NoError(t, world.service.ResetPassword(ctx, token, "new-pw"))

		assert.True(t, sec.CheckPasswordHash("new-pw", account.PasswordHash))
		assert.True(t, world.sessions.sessions[0].IsRevoked)

		// The token is single-use.
		require.Error(t, world.service.ResetPassword(ctx, token, "sneaky-pw"))
	})

	t.Run("unknown email yields no token and no error", func(t *testing.T) {
		world := newAuthWorld(t)

		token, err := world.service.RequestPasswordReset(ctx, "ghost@tatami.app")
		assert.NoError(t, err)
		assert.Empty(t, token)
	})
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	world := newAuthWorld(t)
	account, err := world.service.Register(ctx, auth.RegisterInput{
		Username: "kano",
		Email:    "kano@tatami.app",
		Password: "secret-pw",
	})
	require.NoError(t, err)
	require.False(t, account.IsVerified)

	var token string
	for issued := range world.verifies.entries {
		token = issued
	}

	require.NoError(t, world.service.VerifyEmail(ctx, token))
	assert.True(t, account.IsVerified)

	// Token is consumed.
	require.Error(t, world.service.VerifyEmail(ctx, token))
}
