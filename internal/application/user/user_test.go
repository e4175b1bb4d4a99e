package user

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/mall/internal/domain/user"
	"github.com/xiebiao/mall/internal/infrastructure/persistence"
	"github.com/xiebiao/mall/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/mall/pkg/errors"
	"github.com/xiebiao/mall/pkg/jwt"
)

type fixture struct {
	backend  *persistence.Backend
	sessions *memory.SessionStore
	register *RegisterUseCase
	login    *LoginUseCase
	logout   *LogoutUseCase
	jwt      *jwt.Manager
}

func newFixture() *fixture {
	b := persistence.NewMemoryBackend()
	svc := user.NewService(b.Users, bcrypt.MinCost)
	sessions := memory.NewSessionStore()
	jm := jwt.NewManager("test-secret", "mall", time.Hour, 24*time.Hour)

	return &fixture{
		backend:  b,
		sessions: sessions,
		register: NewRegisterUseCase(b.Tx, b.Users, b.Carts, svc, zerolog.Nop()),
		login:    NewLoginUseCase(svc, jm, sessions, 24*time.Hour, zerolog.Nop()),
		logout:   NewLogoutUseCase(sessions),
		jwt:      jm,
	}
}

func TestRegister_CreatesUserWithCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	info, err := f.register.Execute(ctx, RegisterRequest{Email: "Alice@Example.com", Password: "secret123", Nickname: "alice"})
	require.NoError(t, err)
	assert.NotZero(t, info.ID)
	assert.Equal(t, "alice@example.com", info.Email)

	c, err := f.backend.Carts.FindByUserID(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestRegister_DuplicateEmailLeavesNoCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.register.Execute(ctx, RegisterRequest{Email: "bob@example.com", Password: "secret123", Nickname: "bob"})
	require.NoError(t, err)

	_, err = f.register.Execute(ctx, RegisterRequest{Email: "bob@example.com", Password: "secret456", Nickname: "bob2"})
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
}

func TestRegister_WeakPassword(t *testing.T) {
	f := newFixture()

	_, err := f.register.Execute(context.Background(), RegisterRequest{Email: "c@example.com", Password: "short", Nickname: "cc"})
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestLoginAndLogout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	info, err := f.register.Execute(ctx, RegisterRequest{Email: "dan@example.com", Password: "secret123", Nickname: "dan"})
	require.NoError(t, err)

	_, err = f.login.Execute(ctx, LoginRequest{Email: "dan@example.com", Password: "wrong1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	resp, err := f.login.Execute(ctx, LoginRequest{Email: "dan@example.com", Password: "secret123", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, info.ID, resp.User.ID)

	session, ok := f.sessions.Session(info.ID)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", session["ip"])

	claims, err := f.jwt.ParseToken(resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.logout.Execute(ctx, info.ID, claims.ID, claims.ExpiresAt.Time))

	revoked, err := f.sessions.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, ok = f.sessions.Session(info.ID)
	assert.False(t, ok)
}
