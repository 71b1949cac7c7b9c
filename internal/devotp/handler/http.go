// Package handler serves the dev-only GET /dev/otp endpoint.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/jaehkim-quant/research-platform/internal/devotp"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
)

const devOTPNote = "DEV MODE ONLY"

var (
	errUsernameRequired = apierror.New(apierror.ErrBadRequest, "username is required")
	errNotFound         = apierror.New(apierror.ErrNotFound, "OTP not found or expired")
)

// Handler reads codes from a dev store. Only mounted when dev OTP mode is on and not production.
type Handler struct {
	store devotp.Store
}

func NewHandler(store devotp.Store) *Handler {
	return &Handler{store: store}
}

type otpResponse struct {
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expiresAt"`
	Note      string    `json:"note"`
}

// GetOTP returns the latest code for ?username=.
func (h *Handler) GetOTP(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		apierror.Write(w, r, errUsernameRequired, nil)
		return
	}
	code, exp, ok := h.store.Get(r.Context(), username)
	if !ok {
		apierror.Write(w, r, errNotFound, nil)
		return
	}
	apierror.JSON(w, r, http.StatusOK, otpResponse{OTP: code, ExpiresAt: exp, Note: devOTPNote})
}
