package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pixshelf/pixshelf-api/internal/application/auth"
	"github.com/pixshelf/pixshelf-api/internal/config"
	"github.com/pixshelf/pixshelf-api/internal/domain"
	"github.com/pixshelf/pixshelf-api/internal/transport/http/cookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Signup(ctx context.Context, req domain.SignupRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAuthSvc) VerifyCode(ctx context.Context, req domain.VerifyCodeRequest) (*auth.AuthResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAuthSvc) Signin(ctx context.Context, req domain.SigninRequest) (*auth.AuthResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func devCookies() *cookie.Manager {
	return cookie.NewManager(&config.Config{AppEnv: "development"})
}

func cookieByName(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func validSignup() domain.SignupRequest {
	return domain.SignupRequest{
		Username:    "alice",
		Email:       "alice@example.com",
		PhoneNumber: "5551234567",
		Password:    "secret-pass",
	}
}

// --- Signup ---

func TestSignup_InvalidBody(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, devCookies())
	r := httptest.NewRequest(http.MethodPost, "/v1/signup", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Signup(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignup_ValidationFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(domain.SignupRequest{Username: "alice"}) // missing required fields
	r := httptest.NewRequest(http.MethodPost, "/v1/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signup(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Errors)
}

func TestSignup_Conflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Signup", mock.Anything, mock.Anything).Return(domain.E(domain.ErrConflict, "User already exists"))
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(validSignup())
	r := httptest.NewRequest(http.MethodPost, "/v1/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signup(rr, r)

	assert.Equal(t, http.StatusConflict, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "User already exists", resp.Message)
	svc.AssertExpectations(t)
}

func TestSignup_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Signup", mock.Anything, mock.Anything).Return(nil)
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(validSignup())
	r := httptest.NewRequest(http.MethodPost, "/v1/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signup(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Verification code sent to email", resp.Message)
	assert.Empty(t, rr.Result().Cookies())
	svc.AssertExpectations(t)
}

// --- VerifyCode ---

func TestVerifyCode_WrongCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyCode", mock.Anything, mock.Anything).
		Return(nil, domain.E(domain.ErrUnauthorized, "Invalid or expired verification code"))
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(domain.VerifyCodeRequest{Email: "alice@example.com", CacheCode: "000000"})
	r := httptest.NewRequest(http.MethodPost, "/v1/verify-code", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.VerifyCode(rr, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
	svc.AssertExpectations(t)
}

func TestVerifyCode_HappyPath_SetsSessionCookies(t *testing.T) {
	svc := &mockAuthSvc{}
	result := &auth.AuthResult{UserID: "u1", Email: "alice@example.com", AccessToken: "acc", RefreshToken: "ref"}
	svc.On("VerifyCode", mock.Anything, mock.Anything).Return(result, nil)
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(domain.VerifyCodeRequest{Email: "alice@example.com", CacheCode: "abc123"})
	r := httptest.NewRequest(http.MethodPost, "/v1/verify-code", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.VerifyCode(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)

	access := cookieByName(t, rr, cookie.AccessCookie)
	refresh := cookieByName(t, rr, cookie.RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Equal(t, "acc", access.Value)
	assert.Equal(t, "ref", refresh.Value)

	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Sign up successfully", resp.Message)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "u1", resp.Data.ID)
	assert.Equal(t, "acc", resp.Data.AccessToken)
	svc.AssertExpectations(t)
}

// --- Signin ---

func TestSignin_NotVerified(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Signin", mock.Anything, mock.Anything).
		Return(nil, domain.E(domain.ErrUnauthorized, "Cache Not Verified"))
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(domain.SigninRequest{Email: "alice@example.com", Password: "secret-pass"})
	r := httptest.NewRequest(http.MethodPost, "/v1/signin", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signin(rr, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Cache Not Verified", resp.Message)
	svc.AssertExpectations(t)
}

func TestSignin_HappyPath_SetsSessionCookies(t *testing.T) {
	svc := &mockAuthSvc{}
	result := &auth.AuthResult{UserID: "u1", Email: "alice@example.com", AccessToken: "acc", RefreshToken: "ref"}
	svc.On("Signin", mock.Anything, mock.Anything).Return(result, nil)
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(domain.SigninRequest{Email: "alice@example.com", Password: "secret-pass"})
	r := httptest.NewRequest(http.MethodPost, "/v1/signin", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signin(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, cookieByName(t, rr, cookie.AccessCookie))
	require.NotNil(t, cookieByName(t, rr, cookie.RefreshCookie))

	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Signin successful", resp.Message)
	svc.AssertExpectations(t)
}

// --- Refresh ---

func TestRefresh_MissingCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, devCookies())
	r := httptest.NewRequest(http.MethodPost, "/v1/refresh-token", nil)
	rr := httptest.NewRecorder()
	h.Refresh(rr, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Refresh token missing", resp.Message)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, "bad").
		Return("", domain.E(domain.ErrForbidden, "Invalid refresh token"))
	h := NewAuthHandler(svc, devCookies())
	r := httptest.NewRequest(http.MethodPost, "/v1/refresh-token", nil)
	r.AddCookie(&http.Cookie{Name: cookie.RefreshCookie, Value: "bad"})
	rr := httptest.NewRecorder()
	h.Refresh(rr, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertExpectations(t)
}

func TestRefresh_HappyPath_SetsAccessCookieOnly(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, "ref").Return("new-access", nil)
	h := NewAuthHandler(svc, devCookies())
	r := httptest.NewRequest(http.MethodPost, "/v1/refresh-token", nil)
	r.AddCookie(&http.Cookie{Name: cookie.RefreshCookie, Value: "ref"})
	rr := httptest.NewRecorder()
	h.Refresh(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	access := cookieByName(t, rr, cookie.AccessCookie)
	require.NotNil(t, access)
	assert.Equal(t, "new-access", access.Value)
	assert.Nil(t, cookieByName(t, rr, cookie.RefreshCookie))

	var resp RefreshEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "new-access", resp.AccessToken)
	svc.AssertExpectations(t)
}

// --- Logout ---

func TestLogout_ClearsBothCookies(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, devCookies())
	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodPost, "/v1/logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	access := cookieByName(t, rr, cookie.AccessCookie)
	refresh := cookieByName(t, rr, cookie.RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Empty(t, access.Value)
	assert.Empty(t, refresh.Value)
	assert.Equal(t, -1, access.MaxAge)
	assert.Equal(t, -1, refresh.MaxAge)

	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Logout successful", resp.Message)
}

// --- ForgotPassword / ResetPassword ---

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ForgotPassword", mock.Anything, "ghost@example.com").
		Return(domain.E(domain.ErrNotFound, "User not found"))
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(domain.ForgotPasswordRequest{Email: "ghost@example.com"})
	r := httptest.NewRequest(http.MethodPost, "/v1/forgot-password", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ForgotPassword(rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	svc.AssertExpectations(t)
}

func TestResetPassword_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResetPassword", mock.Anything, mock.Anything).Return(nil)
	h := NewAuthHandler(svc, devCookies())
	body, _ := json.Marshal(domain.ResetPasswordRequest{
		Email: "alice@example.com", CacheCode: "abc123", Password: "new-password",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/reset-password", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ResetPassword(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Password reset successfully", resp.Message)
	svc.AssertExpectations(t)
}
