package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/middleware"
	"github.com/jefin10/VoiceUPI/internal/models"
)

// IdentityCommander defines the write-side operations used by IdentityHandler.
type IdentityCommander interface {
	SignUp(cqrs.SignUpCommand) (*models.Identity, error)
}

// IdentityQuerier defines the read-side operations used by IdentityHandler.
type IdentityQuerier interface {
	Resolve(cqrs.ResolveIdentityQuery) (*models.IdentityView, error)
}

type IdentityHandler struct {
	commands IdentityCommander
	queries  IdentityQuerier
}

type SignUpRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=2,max=100"`
}

func NewIdentityHandler(commands IdentityCommander, queries IdentityQuerier) *IdentityHandler {
	return &IdentityHandler{commands: commands, queries: queries}
}

// SignUp creates the caller's identity and seeds its account. The phone
// number is the verified one from the session token, never client input.
func (h *IdentityHandler) SignUp(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)

	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	identity, err := h.commands.SignUp(cqrs.SignUpCommand{
		DisplayName: req.DisplayName,
		PhoneNumber: phone,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, identity)
}

// Resolve looks up an identity by phone number or UPI handle.
func (h *IdentityHandler) Resolve(c *gin.Context) {
	phone := c.Query("phone")
	upiID := c.Query("upiId")
	if phone == "" && upiID == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "Provide phone or upiId")
		return
	}

	view, err := h.queries.Resolve(cqrs.ResolveIdentityQuery{
		PhoneNumber: phone,
		UpiHandle:   upiID,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Me returns the caller's own directory entry.
func (h *IdentityHandler) Me(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)

	view, err := h.queries.Resolve(cqrs.ResolveIdentityQuery{PhoneNumber: phone})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
