package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
	"golang.org/x/crypto/bcrypt"
)

type CustomerClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users     repositories.UserRepository
	jwtSecret []byte
}

func NewAuthService(users repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: []byte(jwtSecret)}
}

// AdminLogin checks an admin's e-mail and password.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Role != models.RoleAdmin {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, fullName, email, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s already exists", ErrInvalidInput, email)
	}
	user := &models.User{FullName: fullName, Email: email, Password: password, Role: models.RoleAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, nil
}

// IssueCustomerToken signs a bearer token for a storefront customer.
func (s *AuthService) IssueCustomerToken(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomerClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *AuthService) ParseCustomerToken(raw string) (*CustomerClaims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	claims := &CustomerClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
