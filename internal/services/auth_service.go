package services

import (
	"fmt"
	"strings"
	"time"

	"toko/internal/models"
	"toko/internal/repositories"
	"toko/pkg/apperrors"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "toko"

// Claims are carried by every access token issued at login.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// IsAdmin reports whether the token holder has the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// AuthService issues and checks access tokens and owns user accounts.
type AuthService struct {
	users    repositories.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      logrus.FieldLogger
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to
// one day.
func NewAuthService(users repositories.UserRepository, secret string, tokenTTL time.Duration, log logrus.FieldLogger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// RegisterUser stores a new customer account. The role on user is ignored;
// self-registration never grants admin.
func (s *AuthService) RegisterUser(user *models.User) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Role = models.RoleCustomer
	return s.createAccount(user)
}

// EnsureAdmin creates an admin account unless the username is already
// taken. It bootstraps the first administrator at startup.
func (s *AuthService) EnsureAdmin(username, email, password string) error {
	if existing, err := s.users.GetByUsername(username); err == nil && existing != nil {
		return nil
	}
	admin := &models.User{
		Username: username,
		Email:    strings.ToLower(email),
		Password: password,
		Role:     models.RoleAdmin,
	}
	if err := s.createAccount(admin); err != nil {
		return fmt.Errorf("failed to create admin %s: %w", username, err)
	}
	return nil
}

func (s *AuthService) createAccount(user *models.User) error {
	if existing, err := s.users.GetByUsername(user.Username); err == nil && existing != nil {
		return apperrors.Conflict("username '%s' already taken", user.Username)
	}
	if existing, err := s.users.GetByEmail(user.Email); err == nil && existing != nil {
		return apperrors.Conflict("email '%s' already registered", user.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}
	user.Password = string(hash)

	if err := s.users.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("account created")
	return nil
}

// LoginUser checks the password and returns a signed HS256 token.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.users.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		// same answer for unknown users and bad passwords
		return "", apperrors.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.Unauthorized("invalid credentials")
	}

	role := user.Role
	if role == "" {
		role = models.RoleCustomer
	}
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to sign token: %w", err))
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of a token and returns its
// claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.log.WithError(err).Debug("token validation failed")
		return nil, apperrors.Unauthorized(fmt.Sprintf("invalid token: %v", err))
	}
	if !token.Valid || claims.UserID == "" {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return claims, nil
}

// Profile returns the account behind userID without its password hash.
func (s *AuthService) Profile(userID string) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}
