package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edufarias/bancoledger/internal/adapter/http/dto"
	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/infrastructure/metrics"
	"github.com/edufarias/bancoledger/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.TransferResult, error)
	GetTransfer(ctx context.Context, id string) (*domain.Transfer, error)
	ListTransfersByAccount(ctx context.Context, input usecase.ListTransfersByAccountInput) ([]*domain.Transfer, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create executes a transfer between two accounts. Business rejections come
// back as a structured result with a 400; only storage faults produce 5xx.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	start := time.Now()

	result, err := h.transferUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to execute transfer", err.Error())

		return
	}

	metrics.TransferDuration.Observe(time.Since(start).Seconds())

	if !result.Success {
		metrics.TransfersRejected.WithLabelValues(string(result.Code)).Inc()
		writeJSON(w, http.StatusBadRequest, dto.TransferResultFromDomain(result))

		return
	}

	if result.Replayed() {
		metrics.IdempotentReplays.Inc()
	} else {
		metrics.TransfersCompleted.Inc()
	}

	writeJSON(w, http.StatusOK, dto.TransferResultFromDomain(result))
}

// Get retrieves a transfer record by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	transfer, err := h.transferUC.GetTransfer(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// List lists transfer records touching the authenticated holder's account.
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	transfers, err := h.transferUC.ListTransfersByAccount(r.Context(), usecase.ListTransfersByAccountInput{
		AccountID: claims.AccountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transfers", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}
