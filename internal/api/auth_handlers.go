package api

import (
	"net/http"
	"strings"

	"github.com/crimewatch-io/crimewatch/internal/auth"
)

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	AnonymousName string `json:"anonymousName"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func sessionMeta(r *http.Request) auth.SessionMeta {
	return auth.SessionMeta{
		DeviceInfo: r.Header.Get("X-Device-Info"),
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
}

// RegisterHandler creates a user account.
func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "A valid email is required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Password must be at least 8 characters"})
		return
	}

	pair, err := api.auth.Register(req.Email, req.Password, strings.TrimSpace(req.AnonymousName), sessionMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pair)
}

// LoginHandler authenticates a user and returns a token pair.
func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := api.auth.Login(strings.TrimSpace(strings.ToLower(req.Email)), req.Password, sessionMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// AdminLoginHandler checks admin credentials and emails an OTP.
func (api *Api) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := api.auth.AdminLogin(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "OTP sent to email"})
}

// VerifyOTPHandler completes an admin login.
func (api *Api) VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := api.auth.VerifyOTP(strings.TrimSpace(strings.ToLower(req.Email)), strings.TrimSpace(req.OTP), sessionMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// RefreshHandler rotates a user refresh token.
func (api *Api) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := api.auth.RefreshUserToken(req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// AdminRefreshHandler rotates an admin refresh token.
func (api *Api) AdminRefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := api.auth.RefreshAdminToken(req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// LogoutHandler revokes the session holding the refresh token. Always answers
// 200; revoking an unknown token is not an error worth reporting.
func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	api.auth.Logout(req.RefreshToken)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

// LogoutAllHandler revokes every session of the calling principal. The access
// token identifies who is asking; no refresh token is needed.
func (api *Api) LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Authorization required"})
		return
	}

	if err := api.auth.LogoutAll(claims.Subject, claims.Role.IsAdmin()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out everywhere"})
}
