package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/middleware"
	"github.com/jefin10/VoiceUPI/internal/models"
)

// TransferCommander defines the write-side operations used by TransferHandler.
type TransferCommander interface {
	Transfer(cqrs.TransferCommand) (*models.TransferReceipt, error)
}

// LedgerQuerier defines the read-side operations used by TransferHandler.
type LedgerQuerier interface {
	GetBalance(cqrs.GetBalanceQuery) (*models.BalanceView, error)
	ListTransactions(cqrs.ListTransactionsQuery) (*models.TransactionHistory, error)
}

type TransferHandler struct {
	commands TransferCommander
	queries  LedgerQuerier
}

type TransferRequest struct {
	// Recipient is a phone number or a UPI handle.
	Recipient string          `json:"to" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

func NewTransferHandler(commands TransferCommander, queries LedgerQuerier) *TransferHandler {
	return &TransferHandler{commands: commands, queries: queries}
}

// Transfer sends money from the authenticated caller to the recipient.
func (h *TransferHandler) Transfer(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	receipt, err := h.commands.Transfer(cqrs.TransferCommand{
		SenderPhone: phone,
		Recipient:   req.Recipient,
		Amount:      req.Amount,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// GetBalance returns the caller's balance.
func (h *TransferHandler) GetBalance(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)

	view, err := h.queries.GetBalance(cqrs.GetBalanceQuery{PhoneNumber: phone})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListTransactions returns the caller's sent and received transactions.
func (h *TransferHandler) ListTransactions(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)

	history, err := h.queries.ListTransactions(cqrs.ListTransactionsQuery{PhoneNumber: phone})
	if err != nil {
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
