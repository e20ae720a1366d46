package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/edufarias/bancoledger/internal/adapter/http/dto"
	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/infrastructure/metrics"
	"github.com/edufarias/bancoledger/internal/usecase"
)

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	AddMovement(ctx context.Context, input usecase.MovementInput) error
	GetBalance(ctx context.Context, accountNumber int64) (decimal.Decimal, error)
	ListMovements(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error)
}

// MovementHandler handles movement-related HTTP requests.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Create records a credit or debit. A replayed request key returns the same
// 204 as the first call.
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.movementUC.AddMovement(r.Context(), req.ToUseCaseInput()); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record movement", err.Error())

		return
	}

	// Replays skip validation, so only label with recognized types.
	if mt := domain.MovementType(req.Type); mt.IsValid() {
		metrics.MovementsCreated.WithLabelValues(string(mt)).Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

// Balance returns an account balance. The account number comes from the
// account_number query parameter when present, otherwise from the caller's
// token.
func (h *MovementHandler) Balance(w http.ResponseWriter, r *http.Request) {
	number, ok := parseInt64Query(r, "account_number")
	if !ok {
		claims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}
		number = claims.AccountNumber
	}

	balance, err := h.movementUC.GetBalance(r.Context(), number)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountNumber: number,
		Balance:       balance,
	})
}

// List lists the authenticated holder's movements, newest first.
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	movements, err := h.movementUC.ListMovements(r.Context(), usecase.ListMovementsInput{
		AccountNumber: claims.AccountNumber,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list movements", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MovementsFromDomain(movements))
}
