package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/intent"
	"github.com/jefin10/VoiceUPI/internal/middleware"
	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/utils"
)

// Predictor defines the classifier boundary used by AssistHandler.
type Predictor interface {
	Predict(ctx context.Context, text string) (*intent.Result, error)
}

// AssistHandler turns a transcribed voice command into a core operation:
// classify, extract entities, route. Low-confidence predictions fall back
// to a chat reply instead of touching the ledger.
type AssistHandler struct {
	predictor     Predictor
	transfers     TransferCommander
	requests      RequestCommander
	ledger        LedgerQuerier
	minConfidence float64
}

type AssistRequest struct {
	Text string `json:"text" validate:"required"`
}

type AssistResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reply      string  `json:"reply"`
	Data       any     `json:"data,omitempty"`
}

func NewAssistHandler(
	predictor Predictor,
	transfers TransferCommander,
	requests RequestCommander,
	ledger LedgerQuerier,
	minConfidence float64,
) *AssistHandler {
	return &AssistHandler{
		predictor:     predictor,
		transfers:     transfers,
		requests:      requests,
		ledger:        ledger,
		minConfidence: minConfidence,
	}
}

func (h *AssistHandler) Assist(c *gin.Context) {
	phone, _ := middleware.GetPhone(c)

	var req AssistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.predictor.Predict(c.Request.Context(), req.Text)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadGateway, "Could not understand the command right now")
		return
	}

	if result.Confidence < h.minConfidence || result.Label == intent.Chat {
		c.JSON(http.StatusOK, AssistResponse{
			Intent:     intent.Chat,
			Confidence: result.Confidence,
			Reply:      "Sorry, I did not catch that. Could you rephrase?",
		})
		return
	}

	entities := intent.ParseEntities(result.Keywords)
	response := AssistResponse{Intent: result.Label, Confidence: result.Confidence}

	switch result.Label {
	case intent.CheckBalance:
		view, err := h.ledger.GetBalance(cqrs.GetBalanceQuery{PhoneNumber: phone})
		if err != nil {
			middleware.RespondWithLedgerError(c, err)
			return
		}
		response.Reply = "Your balance is ₹" + view.Balance.StringFixed(2)
		response.Data = view

	case intent.SendMoney:
		recipient, ok := recipientRef(entities)
		if !ok {
			response.Reply = "Who should I send the money to?"
			break
		}
		if entities.Amount == nil {
			response.Reply = "How much should I send?"
			break
		}
		receipt, err := h.transfers.Transfer(cqrs.TransferCommand{
			SenderPhone: phone,
			Recipient:   recipient,
			Amount:      *entities.Amount,
		})
		if err != nil {
			h.replyForError(c, &response, err)
			return
		}
		response.Reply = fmt.Sprintf("Sent ₹%s. Your new balance is ₹%s",
			entities.Amount.StringFixed(2), receipt.NewSenderBalance.StringFixed(2))
		response.Data = receipt

	case intent.RequestMoney:
		requestee, ok := recipientRef(entities)
		if !ok {
			response.Reply = "Who should I request the money from?"
			break
		}
		if entities.Amount == nil {
			response.Reply = "How much should I request?"
			break
		}
		request, err := h.requests.CreateRequest(cqrs.CreateMoneyRequestCommand{
			RequesterPhone: phone,
			Requestee:      requestee,
			Amount:         *entities.Amount,
		})
		if err != nil {
			h.replyForError(c, &response, err)
			return
		}
		response.Reply = fmt.Sprintf("Requested ₹%s", entities.Amount.StringFixed(2))
		response.Data = CreateRequestResponse{RequestID: request.ID.String()}

	case intent.ShowTransactions:
		history, err := h.ledger.ListTransactions(cqrs.ListTransactionsQuery{PhoneNumber: phone})
		if err != nil {
			middleware.RespondWithLedgerError(c, err)
			return
		}
		response.Reply = fmt.Sprintf("You have %d sent and %d received transactions",
			len(history.Sent), len(history.Received))
		response.Data = history

	default:
		response.Intent = intent.Chat
		response.Reply = "Sorry, I did not catch that. Could you rephrase?"
	}

	c.JSON(http.StatusOK, response)
}

// replyForError keeps user-correctable failures conversational and defers
// the rest to the standard error mapping.
func (h *AssistHandler) replyForError(c *gin.Context, response *AssistResponse, err error) {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		response.Reply = "You do not have enough balance for that"
	case errors.Is(err, models.ErrNotFound):
		response.Reply = "I could not find that person"
	default:
		middleware.RespondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, *response)
}

// recipientRef picks the strongest available reference to the other party:
// UPI handle, then phone number, then the handle derived from a name.
func recipientRef(entities intent.Entities) (string, bool) {
	switch {
	case entities.UpiID != nil:
		return *entities.UpiID, true
	case entities.PhoneNumber != nil:
		return *entities.PhoneNumber, true
	case entities.RecipientName != nil:
		return utils.DeriveUpiHandle(*entities.RecipientName), true
	}
	return "", false
}
