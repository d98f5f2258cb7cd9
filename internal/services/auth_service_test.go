package services_test

import (
	"os"
	"testing"
	"time"

	"toko/internal/models"
	"toko/internal/services"
	"toko/pkg/apperrors"
	"toko/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	return m.user(m.Called(username))
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	return m.user(m.Called(email))
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	return m.user(m.Called(id))
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

var testLog = logger.Discard()

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

func newAuthService(repo *MockUserRepository) *services.AuthService {
	return services.NewAuthService(repo, testJWTSecret, time.Hour, testLog)
}

func signed(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestAuthService_RegisterUser(t *testing.T) {
	t.Run("creates a customer with a hashed password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", "testuser").Return(nil, apperrors.NotFound("user", "testuser")).Once()
		repo.On("GetByEmail", "test@example.com").Return(nil, apperrors.NotFound("user", "test@example.com")).Once()
		repo.On("Create", mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleCustomer &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")) == nil
		})).Return(nil).Once()

		user := &models.User{
			Username: " testuser ",
			Email:    "Test@Example.com",
			Password: "password123",
			Role:     models.RoleAdmin,
		}
		require.NoError(t, newAuthService(repo).RegisterUser(user))
		assert.Equal(t, "testuser", user.Username)
		assert.Equal(t, "test@example.com", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("username taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", "testuser").Return(&models.User{ID: "1"}, nil).Once()

		err := newAuthService(repo).RegisterUser(&models.User{Username: "testuser", Email: "a@b.co", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Contains(t, err.Error(), "username 'testuser' already taken")
		repo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", "testuser").Return(nil, apperrors.NotFound("user", "testuser")).Once()
		repo.On("GetByEmail", "test@example.com").Return(&models.User{ID: "1"}, nil).Once()

		err := newAuthService(repo).RegisterUser(&models.User{Username: "testuser", Email: "test@example.com", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Contains(t, err.Error(), "email 'test@example.com' already registered")
	})
}

func TestAuthService_LoginUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "user-123", Username: "testuser", Password: string(hash), Role: models.RoleAdmin}

	t.Run("issues a token carrying id, username and role", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", "testuser").Return(user, nil).Once()
		authService := newAuthService(repo)

		token, err := authService.LoginUser("testuser", "password123")
		require.NoError(t, err)

		claims, err := authService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "testuser", claims.Username)
		assert.True(t, claims.IsAdmin())
		assert.Equal(t, "user-123", claims.Subject)
		assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", "testuser").Return(user, nil).Once()
		repo.On("GetByUsername", "ghost").Return(nil, apperrors.NotFound("user", "ghost")).Once()
		authService := newAuthService(repo)

		_, errWrong := authService.LoginUser("testuser", "wrongpassword")
		_, errGhost := authService.LoginUser("ghost", "password123")
		for _, err := range []error{errWrong, errGhost} {
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
			assert.Contains(t, err.Error(), "invalid credentials")
		}
		repo.AssertExpectations(t)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository))
	valid := services.Claims{
		UserID:         "user-123",
		Username:       "testuser",
		Role:           models.RoleCustomer,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}

	claims, err := authService.ValidateToken(signed(t, valid, jwt.SigningMethodHS256, []byte(testJWTSecret)))
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.False(t, claims.IsAdmin())

	expired := valid
	expired.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	noUser := valid
	noUser.UserID = ""

	rejected := map[string]string{
		"garbage":      "invalid.token.string",
		"wrong secret": signed(t, valid, jwt.SigningMethodHS256, []byte("other")),
		"expired":      signed(t, expired, jwt.SigningMethodHS256, []byte(testJWTSecret)),
		"no user id":   signed(t, noUser, jwt.SigningMethodHS256, []byte(testJWTSecret)),
	}
	for name, token := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := authService.ValidateToken(token)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
			assert.Contains(t, err.Error(), "invalid token")
		})
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	repo := new(MockUserRepository)
	authService := newAuthService(repo)

	repo.On("GetByUsername", "root").Return(nil, apperrors.NotFound("user", "root")).Twice()
	repo.On("GetByEmail", "root@example.com").Return(nil, apperrors.NotFound("user", "root@example.com")).Once()
	repo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAdmin && u.Username == "root" && u.Password != "secret123"
	})).Return(nil).Once()
	assert.NoError(t, authService.EnsureAdmin("root", "Root@Example.com", "secret123"))

	// already present: nothing is created
	repo.On("GetByUsername", "root").Return(&models.User{ID: "1", Username: "root"}, nil).Once()
	assert.NoError(t, authService.EnsureAdmin("root", "root@example.com", "secret123"))
	repo.AssertExpectations(t)
}

func TestAuthService_ProfileHidesPassword(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", "user-1").Return(&models.User{ID: "user-1", Username: "ann", Password: "hash"}, nil).Once()
	repo.On("GetByID", "nope").Return(nil, apperrors.NotFound("user", "nope")).Once()
	authService := newAuthService(repo)

	user, err := authService.Profile("user-1")
	require.NoError(t, err)
	assert.Empty(t, user.Password)

	_, err = authService.Profile("nope")
	assert.True(t, apperrors.IsNotFound(err))
}
