package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sistenfrota/auth-service/internal/config"
	"github.com/sistenfrota/auth-service/internal/models"
)

// AccessClaims prove identity and role for a single request window.
type AccessClaims struct {
	UserID string          `json:"id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the user's token version at issuance time. A refresh
// token is only accepted while its version still equals the persisted one.
type RefreshClaims struct {
	UserID  string `json:"id"`
	Version int    `json:"version"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the two token kinds with distinct secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	rememberTTL   time.Duration
	now           func() time.Time
}

func NewTokenService(cfg *config.JWTConfig) (*TokenService, error) {
	accessTTL, err := cfg.GetAccessTokenExpiry()
	if err != nil {
		return nil, err
	}
	refreshTTL, err := cfg.GetRefreshTokenExpiry()
	if err != nil {
		return nil, err
	}
	rememberTTL, err := cfg.GetRememberMeTokenExpiry()
	if err != nil {
		return nil, err
	}

	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		rememberTTL:   rememberTTL,
		now:           time.Now,
	}, nil
}

func (s *TokenService) GenerateAccessToken(user *models.User) (string, error) {
	now := s.now().UTC()
	claims := AccessClaims{
		UserID: user.ID.String(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.accessSecret)
}

func (s *TokenService) GenerateRefreshToken(user *models.User, rememberMe bool) (string, error) {
	now := s.now().UTC()
	claims := RefreshClaims{
		UserID:  user.ID.String(),
		Version: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.RefreshTokenTTL(rememberMe))),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.refreshSecret)
}

func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenMalformed
	}
	if !token.Valid {
		return ErrTokenMalformed
	}
	return nil
}

func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) RefreshTokenTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return s.rememberTTL
	}
	return s.refreshTTL
}
