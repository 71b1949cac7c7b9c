// Package handler serves the admin login endpoints under /api/auth.
package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/identity/service"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
	"github.com/jaehkim-quant/research-platform/internal/server/middleware"
)

// Session cookie names. Production uses the __Secure- prefix, which browsers only accept with Secure set.
const (
	CookieName       = "session-token"
	SecureCookieName = "__Secure-session-token"
)

// CookieNameFor returns the session cookie name for the environment.
func CookieNameFor(production bool) string {
	if production {
		return SecureCookieName
	}
	return CookieName
}

// AuthService is the part of service.AuthService used by the handler.
type AuthService interface {
	RequestOTP(ctx context.Context, username, password string) error
	VerifyOTP(ctx context.Context, username, code string) (*service.SessionResult, error)
	Logout(ctx context.Context, token string) error
}

// Handler maps HTTP requests to the auth service.
type Handler struct {
	auth       AuthService
	production bool
	maxAge     time.Duration
	logger     *zap.Logger
}

// NewHandler returns an auth handler. maxAge is the session cookie lifetime.
func NewHandler(auth AuthService, production bool, maxAge time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{auth: auth, production: production, maxAge: maxAge, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// verifyRequest carries the emailed code as otpCode; the older code key is still read.
type verifyRequest struct {
	Username string `json:"username"`
	OTPCode  string `json:"otpCode"`
	Code     string `json:"code"`
}

func (v verifyRequest) code() string {
	if v.OTPCode != "" {
		return v.OTPCode
	}
	return v.Code
}

type successResponse struct {
	Success bool `json:"success"`
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// RequestOTP handles POST /api/auth/request-otp.
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := apierror.Decode(r, &req); err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	if err := h.auth.RequestOTP(r.Context(), req.Username, req.Password); err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	apierror.JSON(w, r, http.StatusOK, successResponse{Success: true})
}

// VerifyOTP handles POST /api/auth/verify-otp and sets the session cookie on success.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := apierror.Decode(r, &req); err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	res, err := h.auth.VerifyOTP(r.Context(), req.Username, req.code())
	if err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	http.SetCookie(w, h.cookie(res.Token, int(h.maxAge.Seconds())))
	apierror.JSON(w, r, http.StatusOK, sessionResponse{Authenticated: true, Subject: res.Subject, ExpiresAt: &res.ExpiresAt})
}

// Logout handles POST /api/auth/logout: revokes the session if any and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r, CookieNameFor(h.production))
	if err := h.auth.Logout(r.Context(), token); err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	http.SetCookie(w, h.cookie("", -1))
	apierror.JSON(w, r, http.StatusOK, successResponse{Success: true})
}

// Session handles GET /api/auth/session. It reports the state resolved by the Authenticate middleware.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok || !middleware.IsAuthenticated(r.Context()) {
		apierror.JSON(w, r, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	apierror.JSON(w, r, http.StatusOK, sessionResponse{Authenticated: true, Subject: subject})
}

func (h *Handler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieNameFor(h.production),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	}
}
