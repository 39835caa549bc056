package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/intent"
	"github.com/jefin10/VoiceUPI/internal/models"
)

// ---- mock implementations ----

type mockTransferCommander struct {
	transferFn func(cqrs.TransferCommand) (*models.TransferReceipt, error)
}

func (m *mockTransferCommander) Transfer(cmd cqrs.TransferCommand) (*models.TransferReceipt, error) {
	if m.transferFn != nil {
		return m.transferFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockLedgerQuerier struct {
	balanceFn func(cqrs.GetBalanceQuery) (*models.BalanceView, error)
	listTxFn  func(cqrs.ListTransactionsQuery) (*models.TransactionHistory, error)
}

func (m *mockLedgerQuerier) GetBalance(q cqrs.GetBalanceQuery) (*models.BalanceView, error) {
	if m.balanceFn != nil {
		return m.balanceFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLedgerQuerier) ListTransactions(q cqrs.ListTransactionsQuery) (*models.TransactionHistory, error) {
	if m.listTxFn != nil {
		return m.listTxFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

type mockRequestCommander struct {
	createFn func(cqrs.CreateMoneyRequestCommand) (*models.MoneyRequest, error)
	updateFn func(cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error)
}

func (m *mockRequestCommander) CreateRequest(cmd cqrs.CreateMoneyRequestCommand) (*models.MoneyRequest, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockRequestCommander) UpdateStatus(cmd cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockRequestQuerier struct {
	listFn func(cqrs.ListMoneyRequestsQuery) (*models.MoneyRequestHistory, error)
}

func (m *mockRequestQuerier) ListMoneyRequests(q cqrs.ListMoneyRequestsQuery) (*models.MoneyRequestHistory, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

type mockIdentityCommander struct {
	signUpFn func(cqrs.SignUpCommand) (*models.Identity, error)
}

func (m *mockIdentityCommander) SignUp(cmd cqrs.SignUpCommand) (*models.Identity, error) {
	if m.signUpFn != nil {
		return m.signUpFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockIdentityQuerier struct {
	resolveFn func(cqrs.ResolveIdentityQuery) (*models.IdentityView, error)
}

func (m *mockIdentityQuerier) Resolve(q cqrs.ResolveIdentityQuery) (*models.IdentityView, error) {
	if m.resolveFn != nil {
		return m.resolveFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

type mockOTPVerifier struct {
	sendFn   func(ctx context.Context, phone string) error
	verifyFn func(ctx context.Context, phone, code string) (string, error)
}

func (m *mockOTPVerifier) SendOTP(ctx context.Context, phone string) error {
	if m.sendFn != nil {
		return m.sendFn(ctx, phone)
	}
	return fmt.Errorf("not configured")
}
func (m *mockOTPVerifier) VerifyOTP(ctx context.Context, phone, code string) (string, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, phone, code)
	}
	return "", fmt.Errorf("not configured")
}

type mockPredictor struct {
	predictFn func(ctx context.Context, text string) (*intent.Result, error)
}

func (m *mockPredictor) Predict(ctx context.Context, text string) (*intent.Result, error) {
	if m.predictFn != nil {
		return m.predictFn(ctx, text)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(phone string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("phone", phone)
		c.Next()
	}
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
