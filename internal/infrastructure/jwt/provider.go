package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/pixshelf/pixshelf-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Validation errors. ErrExpired covers a structurally valid token past
// its expiry; everything else (bad signature, wrong secret, garbage)
// is ErrInvalid.
var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("invalid token")
)

// Claims holds the JWT payload fields shared by both token kinds.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies the HS256 access/refresh token pair.
// Each kind has its own secret and expiry, so a refresh token can never
// pass access-token verification. Sign and Verify are pure computations
// over immutable configuration and safe for concurrent use.
type Provider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	return &Provider{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}, nil
}

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IssuePair signs a fresh access/refresh pair for the user.
func (p *Provider) IssuePair(userID, email string) (TokenPair, error) {
	access, err := p.SignAccess(userID, email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := p.sign(userID, email, p.refreshSecret, p.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// SignAccess signs a new access token only. Used by the refresh flow,
// which never rotates the refresh token.
func (p *Provider) SignAccess(userID, email string) (string, error) {
	return p.sign(userID, email, p.accessSecret, p.accessTTL)
}

func (p *Provider) VerifyAccess(tokenStr string) (*Claims, error) {
	return verify(tokenStr, p.accessSecret)
}

func (p *Provider) VerifyRefresh(tokenStr string) (*Claims, error) {
	return verify(tokenStr, p.refreshSecret)
}

func (p *Provider) sign(userID, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func verify(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
