package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogcms/internal/models"
	"blogcms/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// AuthService handles user auth logic
type AuthService struct {
	userRepo   repository.Users
	captcha    CaptchaVerifier
	signingKey []byte
	tokenTTL   time.Duration
}

func NewAuthService(repo repository.Users, captcha CaptchaVerifier, cfg AuthConfig) *AuthService {
	ttl := defaultTokenTTL
	if cfg.TokenTTL > 0 {
		ttl = time.Duration(cfg.TokenTTL) * time.Minute
	}
	return &AuthService{
		userRepo:   repo,
		captcha:    captcha,
		signingKey: []byte(cfg.SigningKey),
		tokenTTL:   ttl,
	}
}

var _ Authorization = (*AuthService)(nil)

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Register verifies the CAPTCHA, checks for a duplicate username, hashes
// the password and creates the user. New users are never admins.
func (s *AuthService) Register(ctx context.Context, username, password, captchaResponse string) (models.PublicUser, error) {
	if strings.TrimSpace(username) == "" {
		return models.PublicUser{}, fmt.Errorf("%w: username is empty", ErrInvalidInput)
	}

	ok, err := s.captcha.Verify(ctx, captchaResponse)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		return models.PublicUser{}, ErrCaptcha
	}

	existing, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return models.PublicUser{}, err
	}
	if existing != nil {
		return models.PublicUser{}, fmt.Errorf("%w: %q", ErrUserExists, username)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.userRepo.Create(username, hash, false)
	if err != nil {
		return models.PublicUser{}, err
	}
	return models.PublicUser{ID: id, Username: username, IsAdmin: false}, nil
}

// Login validates credentials and returns the user plus a signed JWT.
// Unknown user and wrong password fail identically, to avoid enumeration.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.PublicUser, string, error) {
	u, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return models.PublicUser{}, "", err
	}
	if u == nil {
		return models.PublicUser{}, "", ErrInvalidCredentials
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return models.PublicUser{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return models.PublicUser{}, "", err
	}
	return u.Public(), token, nil
}

// ParseToken parses and validates a JWT, returning its claims.
func (s *AuthService) ParseToken(accessToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CurrentUser loads the public view of a user by id.
func (s *AuthService) CurrentUser(ctx context.Context, id int) (models.PublicUser, error) {
	u, err := s.userRepo.GetByID(id)
	if err != nil {
		return models.PublicUser{}, err
	}
	if u == nil {
		return models.PublicUser{}, fmt.Errorf("%w: user id=%d", ErrNotFound, id)
	}
	return u.Public(), nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// helper: issue a signed JWT for a user
func (s *AuthService) issueToken(u *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	})
	return token.SignedString(s.signingKey)
}
