package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jefin10/VoiceUPI/internal/models"
)

var validate = validator.New()

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type BadRequestErrorResponse struct {
	Message string            `json:"message"`
	Details []ValidationError `json:"details"`
}

func ValidateRequest(obj any) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	for _, err := range err.(validator.ValidationErrors) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: getErrorMsg(err),
			Type:    err.Tag(),
		})
	}

	return validationErrors
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "len":
		return "Value must have length " + err.Param()
	default:
		return "Invalid value"
	}
}

func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusBadRequest, BadRequestErrorResponse{
		Message: "Invalid request data",
		Details: validationErrors,
	})
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"message": message,
	})
}

// RespondWithLedgerError maps the ledger failure taxonomy onto HTTP. Every
// typed failure reaches the caller; nothing is swallowed here.
func RespondWithLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrInvalidOperation):
		RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInsufficientFunds):
		RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrAlreadyProcessed):
		RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrBusy):
		RespondWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
