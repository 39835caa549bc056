package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/middleware"
	"github.com/jefin10/VoiceUPI/internal/models"
)

// RequestCommander defines the write-side operations used by RequestHandler.
type RequestCommander interface {
	CreateRequest(cqrs.CreateMoneyRequestCommand) (*models.MoneyRequest, error)
	UpdateStatus(cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error)
}

// RequestQuerier defines the read-side operations used by RequestHandler.
type RequestQuerier interface {
	ListMoneyRequests(cqrs.ListMoneyRequestsQuery) (*models.MoneyRequestHistory, error)
}

type RequestHandler struct {
	commands RequestCommander
	queries  RequestQuerier
}

type CreateRequestRequest struct {
	// Requestee is a phone number or a UPI handle.
	Requestee string          `json:"from" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message" validate:"max=200"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected cancelled"`
}

type CreateRequestResponse struct {
	RequestID string `json:"requestId"`
}

type UpdateRequestStatusResponse struct {
	Status string `json:"status"`
}

func NewRequestHandler(commands RequestCommander, queries RequestQuerier) *RequestHandler {
	return &RequestHandler{commands: commands, queries: queries}
}

// CreateRequest asks the requestee to send money to the caller.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	request, err := h.commands.CreateRequest(cqrs.CreateMoneyRequestCommand{
		RequesterPhone: phone,
		Requestee:      req.Requestee,
		Amount:         req.Amount,
		Message:        req.Message,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateRequestResponse{RequestID: request.ID.String()})
}

// UpdateStatus applies the single allowed transition out of pending.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)
	requestID := c.Param("requestId")

	var req UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	request, err := h.commands.UpdateStatus(cqrs.UpdateRequestStatusCommand{
		RequestID:   requestID,
		ActingPhone: phone,
		NewStatus:   req.Status,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, UpdateRequestStatusResponse{Status: string(request.Status)})
}

// ListRequests returns the caller's sent and received money requests.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)

	history, err := h.queries.ListMoneyRequests(cqrs.ListMoneyRequestsQuery{PhoneNumber: phone})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
