// Package httpapi exposes the authentication workflows as a JSON HTTP API.
// Request payloads are schema-validated here; the service layer returns
// semantic outcomes which this package maps to HTTP statuses. Internal
// failure detail is never included in a response body.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/go-playground/validator/v10"
)

// UserService is the workflow surface consumed by the HTTP layer,
// implemented by *services.UserService.
type UserService interface {
	Signup(ctx context.Context, username, email, password, confirmPassword string) error
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (*services.Profile, error)
}

type Handlers struct {
	users    UserService
	logger   logging.Logger
	validate *validator.Validate
}

func NewHandlers(users UserService, logger logging.Logger) *Handlers {
	return &Handlers{
		users:    users,
		logger:   logger.With("module", "httpapi"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type signupRequest struct {
	Username        string `json:"username" validate:"required,alpha,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type updateProfileRequest struct {
	Email   string  `json:"email" validate:"required,email"`
	Address *string `json:"address"`
	Gender  *string `json:"gender" validate:"omitempty,max=20"`
	Age     *int    `json:"age"`
}

// forgotPasswordAck is the single acknowledgement returned by the
// forgot-password endpoint, identical for registered and unregistered
// addresses and regardless of delivery outcome.
const forgotPasswordAck = "Password reset link has been sent to your email address. Please check your inbox."

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		sendValidationError(w, err)
		return false
	}
	return true
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.users.Signup(r.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword); err != nil {
		h.renderError(r.Context(), w, err)
		return
	}

	sendSuccessResponse(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}

	sendSuccessResponse(w, http.StatusOK, map[string]interface{}{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.users.ForgotPassword(r.Context(), req.Email); err != nil {
		h.renderError(r.Context(), w, err)
		return
	}

	sendSuccessResponse(w, http.StatusOK, map[string]string{
		"message": forgotPasswordAck,
	})
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.renderError(r.Context(), w, err)
		return
	}

	sendSuccessResponse(w, http.StatusOK, map[string]string{
		"message": "Password reset successful",
	})
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	upd := models.ProfileUpdate{Address: req.Address, Gender: req.Gender, Age: req.Age}
	profile, err := h.users.UpdateProfile(r.Context(), req.Email, upd)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}

	sendSuccessResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    profile,
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	sendSuccessResponse(w, http.StatusOK, map[string]string{"message": "API is working!"})
}

// renderError maps workflow outcomes to HTTP statuses. Anything unrecognized
// is an infrastructure fault and is rendered as an opaque 500.
func (h *Handlers) renderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrPasswordMismatch),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenAlreadyUsed),
		errors.Is(err, common.ErrSamePassword),
		errors.Is(err, common.ErrInvalidAddress),
		errors.Is(err, common.ErrInvalidAge):
		sendErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrEmailTaken),
		errors.Is(err, common.ErrUsernameTaken):
		sendErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		sendErrorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrAccountNotFound):
		sendErrorResponse(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(ctx, "request failed", "error", err.Error())
		sendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
