package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jefin10/VoiceUPI/internal/middleware"
)

// OTPVerifier defines the phone-verification operations used by AuthHandler.
type OTPVerifier interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (string, error)
}

// AuthHandler handles OTP delivery and verification. A successful
// verification returns the session token protected routes require.
type AuthHandler struct {
	otp OTPVerifier
}

type SendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Code        string `json:"otp" validate:"required,len=6"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(otp OTPVerifier) *AuthHandler {
	return &AuthHandler{otp: otp}
}

func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	if err := h.otp.SendOTP(c.Request.Context(), req.PhoneNumber); err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to send OTP")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OTP sent"})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.otp.VerifyOTP(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired code")
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}
