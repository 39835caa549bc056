package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/models"
)

func newRequestTestRouter(cmds RequestCommander, qrys RequestQuerier, phone string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(phone))
	h := NewRequestHandler(cmds, qrys)
	v1 := r.Group("/v1")
	v1.POST("/money-requests", h.CreateRequest)
	v1.PATCH("/money-requests/:requestId", h.UpdateStatus)
	v1.GET("/money-requests", h.ListRequests)
	return r
}

func testRequest(status models.RequestStatus) *models.MoneyRequest {
	return &models.MoneyRequest{
		ID:               uuid.New(),
		RequesterAccount: "01000001",
		RequesteeAccount: "01000002",
		Amount:           decimal.RequireFromString("250.00"),
		Status:           status,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

func TestCreateRequest(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateMoneyRequestCommand) (*models.MoneyRequest, error)
		expectedStatus int
	}{
		{
			name: "success - request money from phone number",
			body: map[string]interface{}{"from": "+919900000002", "amount": "250.00", "message": "lunch"},
			createFn: func(cmd cqrs.CreateMoneyRequestCommand) (*models.MoneyRequest, error) {
				return testRequest(models.RequestPending), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "not found - unknown requestee",
			body: map[string]interface{}{"from": "nobody@upi", "amount": "250.00"},
			createFn: func(cmd cqrs.CreateMoneyRequestCommand) (*models.MoneyRequest, error) {
				return nil, models.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "bad request - request from self",
			body: map[string]interface{}{"from": "+919900000001", "amount": "250.00"},
			createFn: func(cmd cqrs.CreateMoneyRequestCommand) (*models.MoneyRequest, error) {
				return nil, models.ErrInvalidOperation
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing requestee",
			body:           map[string]interface{}{"amount": "250.00"},
			createFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - message too long",
			body: map[string]interface{}{
				"from": "+919900000002", "amount": "250.00",
				"message": string(make([]byte, 201)),
			},
			createFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockRequestCommander{createFn: tt.createFn}
			router := newRequestTestRouter(cmds, &mockRequestQuerier{}, "+919900000001")
			w := doRequest(router, http.MethodPost, "/v1/money-requests", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateRequestStatus(t *testing.T) {
	requestID := uuid.NewString()
	tests := []struct {
		name           string
		body           interface{}
		updateFn       func(cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error)
		expectedStatus int
	}{
		{
			name: "success - requestee approves",
			body: map[string]interface{}{"status": "approved"},
			updateFn: func(cmd cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error) {
				return testRequest(models.RequestApproved), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "success - requester cancels",
			body: map[string]interface{}{"status": "cancelled"},
			updateFn: func(cmd cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error) {
				return testRequest(models.RequestCancelled), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "forbidden - wrong side of the request",
			body: map[string]interface{}{"status": "approved"},
			updateFn: func(cmd cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error) {
				return nil, models.ErrUnauthorized
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "conflict - already processed",
			body: map[string]interface{}{"status": "approved"},
			updateFn: func(cmd cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error) {
				return nil, models.ErrAlreadyProcessed
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "unprocessable entity - approval without funds",
			body: map[string]interface{}{"status": "approved"},
			updateFn: func(cmd cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error) {
				return nil, models.ErrInsufficientFunds
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "bad request - status outside the state machine",
			body:           map[string]interface{}{"status": "pending"},
			updateFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing status",
			body:           map[string]interface{}{},
			updateFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockRequestCommander{updateFn: tt.updateFn}
			router := newRequestTestRouter(cmds, &mockRequestQuerier{}, "+919900000002")
			w := doRequest(router, http.MethodPatch, "/v1/money-requests/"+requestID, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListRequests(t *testing.T) {
	tests := []struct {
		name           string
		listFn         func(cqrs.ListMoneyRequestsQuery) (*models.MoneyRequestHistory, error)
		expectedStatus int
	}{
		{
			name: "success - both directions",
			listFn: func(q cqrs.ListMoneyRequestsQuery) (*models.MoneyRequestHistory, error) {
				return &models.MoneyRequestHistory{
					Sent:     []models.MoneyRequestView{},
					Received: []models.MoneyRequestView{},
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found - no identity for caller",
			listFn: func(q cqrs.ListMoneyRequestsQuery) (*models.MoneyRequestHistory, error) {
				return nil, models.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRequestTestRouter(&mockRequestCommander{}, &mockRequestQuerier{listFn: tt.listFn}, "+919900000001")
			w := doRequest(router, http.MethodGet, "/v1/money-requests", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
