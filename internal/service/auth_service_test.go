package service

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-units-api/internal/models"
)

type userRepoStub struct {
	users  map[string]*models.User
	audits []models.AuditLog
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: map[string]*models.User{}}
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Upsert(ctx context.Context, user *models.User) error {
	if existing, err := s.FindByEmail(ctx, user.Email); err == nil {
		existing.PasswordHash = user.PasswordHash
		existing.Name = user.Name
		*user = *existing
		return nil
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *userRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.audits = append(s.audits, *log)
	return nil
}

func newAuthService(repo *userRepoStub) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "test"})
}

func TestAuthServiceSeedIsIdempotent(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)

	first, err := svc.SeedAdmin(context.Background(), "Admin@Example.com", "secret1", "Admin")
	require.NoError(t, err)
	second, err := svc.SeedAdmin(context.Background(), "admin@example.com", "secret2", "Admin")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.users, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[first.ID].PasswordHash), []byte("secret2")))

	_, err = svc.SeedAdmin(context.Background(), "not-an-email", "x", "")
	assertAppStatus(t, err, http.StatusBadRequest)
	_, err = svc.SeedAdmin(context.Background(), "a@b.co", "", "")
	assertAppStatus(t, err, http.StatusBadRequest)
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	_, err := svc.SeedAdmin(context.Background(), "admin@example.com", "secret", "Admin")
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "Admin", resp.User.Name)
	require.Len(t, repo.audits, 1)
	assert.Equal(t, models.AuditActionLogin, repo.audits[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "Admin", claims.Identity())

	info, err := svc.CurrentUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", info.Email)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	_, err := svc.SeedAdmin(context.Background(), "admin@example.com", "secret", "Admin")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assertAppStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret"})
	assertAppStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "bad", Password: "secret"})
	assertAppStatus(t, err, http.StatusBadRequest)
}

func TestAuthServiceRejectsExpiredAndForeignTokens(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	_, err := svc.SeedAdmin(context.Background(), "admin@example.com", "secret", "Admin")
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assertAppStatus(t, err, http.StatusUnauthorized)

	other := NewAuthService(repo, nil, nil, AuthConfig{Secret: "other", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	assertAppStatus(t, err, http.StatusUnauthorized)

	_, err = svc.ValidateToken("garbage")
	assertAppStatus(t, err, http.StatusUnauthorized)
}

func TestAuthServiceRejectsTokensFromOtherIssuer(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	_, err := svc.SeedAdmin(context.Background(), "admin@example.com", "secret", "Admin")
	require.NoError(t, err)

	foreign := NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "someone-else"})
	resp, err := foreign.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assertAppStatus(t, err, http.StatusUnauthorized)

	claims, err := foreign.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestAuthServiceCurrentUserRemoved(t *testing.T) {
	svc := newAuthService(newUserRepoStub())
	_, err := svc.CurrentUser(context.Background(), &models.SessionClaims{UserID: "gone"})
	assertAppStatus(t, err, http.StatusUnauthorized)
}
