package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/edufarias/bancoledger/internal/adapter/http/dto"
	"github.com/edufarias/bancoledger/internal/adapter/http/middleware"
	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/infrastructure/auth"
	"github.com/edufarias/bancoledger/internal/infrastructure/metrics"
	"github.com/edufarias/bancoledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.Account, error)
	GetByNumber(ctx context.Context, number int64) (*domain.Account, error)
}

// TokenIssuer signs tokens for authenticated account holders.
type TokenIssuer interface {
	Generate(account *domain.Account) (string, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	tokens    TokenIssuer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, tokens TokenIssuer) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, tokens: tokens}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create account", err.Error())

		return
	}

	metrics.AccountsCreated.Inc()
	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Login authenticates an account holder and issues a token.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.Authenticate(r.Context(), usecase.AuthenticateInput{
		AccountNumber: req.Number,
		Password:      req.Password,
	})
	if err != nil {
		metrics.AuthFailures.Inc()
		// A generic message so the caller cannot probe which accounts exist.
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")

		return
	}

	token, err := h.tokens.Generate(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: token})
}

// Get returns the authenticated holder's account.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(w, r)
	if !ok {
		return
	}

	account, err := h.accountUC.GetByNumber(r.Context(), claims.AccountNumber)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// claimsFromRequest reads the authenticated claims placed in the context by
// the auth middleware, writing a 401 when they are absent.
func claimsFromRequest(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return nil, false
	}
	return claims, true
}
