package usecase

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/sodam/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository keeps users in memory
type MockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func newTestAuthService(repo domain.UserRepository) *AuthService {
	svc := NewAuthService(repo, AuthServiceConfig{JWTSecret: "test-secret", TokenTTL: time.Minute})
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("normalises and hashes", func(t *testing.T) {
		svc := newTestAuthService(NewMockUserRepository())

		user, err := svc.Register(ctx, &domain.RegisterRequest{Email: "  Kim@Example.COM ", Password: "pw1234", Name: " 김 "})
		require.NoError(t, err)
		assert.Equal(t, "kim@example.com", user.Email)
		assert.Equal(t, "김", user.Name)
		assert.NotEmpty(t, user.ID)
		assert.NotEqual(t, "pw1234", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1234")))
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newTestAuthService(NewMockUserRepository())

		for _, req := range []*domain.RegisterRequest{
			nil,
			{Email: "a@b.c", Password: "x"},
			{Email: " ", Password: "x", Name: "n"},
			{Email: "a@b.c", Password: "", Name: "n"},
		} {
			_, err := svc.Register(ctx, req)
			assert.ErrorIs(t, err, domain.ErrMissingFields)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := newTestAuthService(NewMockUserRepository())

		_, err := svc.Register(ctx, &domain.RegisterRequest{Email: "a@b.c", Password: "x", Name: "n"})
		require.NoError(t, err)
		_, err = svc.Register(ctx, &domain.RegisterRequest{Email: "A@B.C", Password: "y", Name: "m"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}

func TestAuthService_PasswordIsNotTrimmed(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(NewMockUserRepository())

	_, err := svc.Register(ctx, &domain.RegisterRequest{Email: "pad@example.com", Password: "  secret  ", Name: "p"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &domain.LoginRequest{Email: "pad@example.com", Password: "secret"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	res, err := svc.Login(ctx, &domain.LoginRequest{Email: "pad@example.com", Password: "  secret  "})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	_, err = svc.Register(ctx, &domain.RegisterRequest{Email: "blank@example.com", Password: "   ", Name: "b"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, &domain.LoginRequest{Email: "blank@example.com", Password: "   "})
	assert.NoError(t, err)
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(NewMockUserRepository())

	user, err := svc.Register(ctx, &domain.RegisterRequest{Email: "lee@example.com", Password: "secret", Name: "이"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "lee@example.com", Password: "nope"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "ghost@example.com", Password: "secret"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("token round trip", func(t *testing.T) {
		res, err := svc.Login(ctx, &domain.LoginRequest{Email: "LEE@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, res.User.ID)
		require.NotEmpty(t, res.AccessToken)

		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+res.AccessToken)
		id, err := svc.AuthenticateRequest(req)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)

		me, err := svc.CurrentUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "lee@example.com", me.Email)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := svc.AuthenticateRequest(httptest.NewRequest("GET", "/", nil))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := NewAuthService(NewMockUserRepository(), AuthServiceConfig{JWTSecret: "other", TokenTTL: time.Minute})
		token, err := other.IssueToken(user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		_, err = svc.AuthenticateRequest(req)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestAuthService(NewMockUserRepository())
		expired.secret = svc.secret
		expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := expired.IssueToken(user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		_, err = svc.AuthenticateRequest(req)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("claims", func(t *testing.T) {
		token, err := svc.IssueToken(user)
		require.NoError(t, err)

		claims := &jwt.StandardClaims{}
		_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, int64(60), claims.ExpiresAt-claims.IssuedAt)
		assert.NotEmpty(t, claims.Id)
	})
}
