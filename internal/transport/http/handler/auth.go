package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pixshelf/pixshelf-api/internal/application/auth"
	"github.com/pixshelf/pixshelf-api/internal/domain"
	"github.com/pixshelf/pixshelf-api/internal/pkg/validate"
	"github.com/pixshelf/pixshelf-api/internal/transport/http/cookie"
)

// AuthHandler handles the identity and session-lifecycle endpoints.
type AuthHandler struct {
	svc     auth.Service
	cookies *cookie.Manager
}

func NewAuthHandler(svc auth.Service, cookies *cookie.Manager) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validate.Struct(&req); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if err := h.svc.Signup(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Verification code sent to email"})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validate.Struct(&req); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	result, err := h.svc.VerifyCode(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.cookies.SetSession(w, result.AccessToken, result.RefreshToken)
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Success: true,
		Message: "Sign up successfully",
		Data:    &AuthData{ID: result.UserID, Email: result.Email, AccessToken: result.AccessToken},
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validate.Struct(&req); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Verification code sent to email"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validate.Struct(&req); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Password reset successfully"})
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req domain.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validate.Struct(&req); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	result, err := h.svc.Signin(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.cookies.SetSession(w, result.AccessToken, result.RefreshToken)
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Success: true,
		Message: "Signin successful",
		Data:    &AuthData{ID: result.UserID, Email: result.Email, AccessToken: result.AccessToken},
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(cookie.RefreshCookie)
	if err != nil || c.Value == "" {
		writeError(w, http.StatusUnauthorized, "Refresh token missing")
		return
	}
	accessToken, err := h.svc.Refresh(r.Context(), c.Value)
	if err != nil {
		httpError(w, err)
		return
	}
	h.cookies.SetAccess(w, accessToken)
	writeJSON(w, http.StatusOK, RefreshEnvelope{Success: true, AccessToken: accessToken})
}

// Logout clears both session cookies. Tokens are stateless, so there is
// no stored state to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Logout successful"})
}
