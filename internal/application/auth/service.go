package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pixshelf/pixshelf-api/internal/domain"
	jwtinfra "github.com/pixshelf/pixshelf-api/internal/infrastructure/jwt"
	"github.com/pixshelf/pixshelf-api/internal/pkg/code"
	"github.com/pixshelf/pixshelf-api/internal/pkg/id"
	"github.com/pixshelf/pixshelf-api/internal/pkg/password"
)

// AuthResult is what a successful verify-code or signin hands back to the
// transport layer: the identity fields plus the freshly signed pair.
type AuthResult struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// Service is the auth orchestrator. It sequences the credential store,
// the password hasher, the code issuer, the notification dispatchers and
// the token provider per request; every path performs at most one store
// write, so no partial state is reachable.
type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) error
	VerifyCode(ctx context.Context, req domain.VerifyCodeRequest) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	Signin(ctx context.Context, req domain.SigninRequest) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	UpdateByEmail(ctx context.Context, email string, updates map[string]interface{}) error
	MarkVerified(ctx context.Context, email string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type tokenProvider interface {
	IssuePair(userID, email string) (jwtinfra.TokenPair, error)
	SignAccess(userID, email string) (string, error)
	VerifyRefresh(token string) (*jwtinfra.Claims, error)
}

// Account attribute names used in partial update maps.
const (
	fieldCacheCode       = "cache_code"
	fieldCacheCodeExpiry = "cache_code_expiry"
	fieldPasswordHash    = "password_hash"
)

type service struct {
	accounts  accountStore
	mailer    mailer
	smsSender smsSender // optional
	tokens    tokenProvider
}

type ServiceDeps struct {
	AccountRepo accountStore
	Mailer      mailer
	SMSSender   smsSender
	Tokens      tokenProvider
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts:  deps.AccountRepo,
		mailer:    deps.Mailer,
		smsSender: deps.SMSSender,
		tokens:    deps.Tokens,
	}
}

// Signup registers an unverified account and sends its verification code.
// A verified account on the email is a conflict; an unverified one is
// overwritten (re-signup before the store's TTL purges it).
func (s *service) Signup(ctx context.Context, req domain.SignupRequest) error {
	existing, err := s.accounts.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if existing.Verified {
			return domain.E(domain.ErrConflict, "User already exists")
		}
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	byPhone, err := s.accounts.GetByPhone(ctx, req.PhoneNumber)
	switch {
	case err == nil:
		if byPhone.Email != req.Email {
			return domain.E(domain.ErrConflict, "User with this phone number already exists")
		}
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return err
	}
	cacheCode, expiry, err := code.Issue()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	a := &domain.Account{
		Email:           req.Email,
		UserID:          id.New(),
		Username:        req.Username,
		PhoneNumber:     req.PhoneNumber,
		PasswordHash:    hash,
		CacheCode:       cacheCode,
		CacheCodeExpiry: expiry.Unix(),
		Verified:        false,
		ExpiresAt:       now.Add(code.TTL).Unix(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return err
	}

	s.dispatchCode(ctx, a, cacheCode)
	return nil
}

// VerifyCode flips the account to verified when the presented code
// matches and has not expired, then signs the token pair.
func (s *service) VerifyCode(ctx context.Context, req domain.VerifyCodeRequest) (*AuthResult, error) {
	a, err := s.lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !codeMatches(a, req.CacheCode) {
		return nil, domain.E(domain.ErrUnauthorized, "Invalid or expired verification code")
	}
	if err := s.accounts.MarkVerified(ctx, a.Email); err != nil {
		return nil, err
	}
	return s.authResult(a)
}

// ForgotPassword issues a fresh code into the account's code field,
// overwriting any pending signup code (the two flows share the field).
// Only existence is checked: an unverified account may start a reset.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	a, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	cacheCode, expiry, err := code.Issue()
	if err != nil {
		return err
	}
	err = s.accounts.UpdateByEmail(ctx, email, map[string]interface{}{
		fieldCacheCode:       cacheCode,
		fieldCacheCodeExpiry: expiry.Unix(),
	})
	if err != nil {
		return err
	}
	s.dispatchCode(ctx, a, cacheCode)
	return nil
}

// ResetPassword replaces the stored hash when the code checks out. The
// code is left in place and simply ages out at its own expiry. Like
// ForgotPassword, the account's verified status is not consulted:
// possession of the emailed code is the only gate.
func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	a, err := s.lookup(ctx, req.Email)
	if err != nil {
		return err
	}
	if !codeMatches(a, req.CacheCode) {
		return domain.E(domain.ErrUnauthorized, "Invalid or expired verification code")
	}
	hash, err := password.Hash(req.Password)
	if err != nil {
		return err
	}
	return s.accounts.UpdateByEmail(ctx, req.Email, map[string]interface{}{
		fieldPasswordHash: hash,
	})
}

// Signin authenticates a verified account. An unverified account is
// rejected before the password is ever checked, with a distinct message.
func (s *service) Signin(ctx context.Context, req domain.SigninRequest) (*AuthResult, error) {
	a, err := s.lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !a.Verified {
		return nil, domain.E(domain.ErrUnauthorized, "Cache Not Verified")
	}
	if !password.Verify(req.Password, a.PasswordHash) {
		return nil, domain.E(domain.ErrUnauthorized, "Invalid password")
	}
	return s.authResult(a)
}

// Refresh validates the refresh token and signs a new access token. The
// refresh token itself is never rotated: it keeps minting access tokens
// until its own signed expiry.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", domain.E(domain.ErrForbidden, "Invalid refresh token")
	}
	return s.tokens.SignAccess(claims.UserID, claims.Email)
}

// lookup fetches the account behind email. Absence maps to the client's
// 404 message; any other store failure is surfaced untouched.
func (s *service) lookup(ctx context.Context, email string) (*domain.Account, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.ErrNotFound, "User not found")
		}
		return nil, err
	}
	return a, nil
}

func (s *service) authResult(a *domain.Account) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(a.UserID, a.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		UserID:       a.UserID,
		Email:        a.Email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// dispatchCode delivers the code by email, and by SMS when a sender is
// configured. Delivery failures are logged, never surfaced: the signup
// or recovery request has already committed its single store write.
func (s *service) dispatchCode(ctx context.Context, a *domain.Account, cacheCode string) {
	if err := s.mailer.SendEmail(a.Email, "Verification otp", "Your verification code: "+cacheCode); err != nil {
		slog.Warn("failed to send verification email", "email", a.Email, "err", err)
	}
	if s.smsSender != nil && a.PhoneNumber != "" {
		if err := s.smsSender.SendSMS(ctx, a.PhoneNumber, "Your verification code: "+cacheCode); err != nil {
			slog.Warn("failed to send verification SMS", "user_id", a.UserID, "err", err)
		}
	}
}

func codeMatches(a *domain.Account, presented string) bool {
	if a.CacheCode == "" || presented != a.CacheCode {
		return false
	}
	return time.Now().Unix() < a.CacheCodeExpiry
}
