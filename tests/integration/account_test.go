package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/edufarias/bancoledger/internal/adapter/http/dto"
	"github.com/edufarias/bancoledger/tests/testutil"
)

func TestAccountLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newAPIServer(t, testDB, decimal.Zero)

	var created dto.AccountResponse

	t.Run("create account with valid data", func(t *testing.T) {
		req := dto.CreateAccountRequest{
			HolderName: "Ana Souza",
			CPF:        "529.982.247-25",
			Password:   "correct-horse",
		}
		body, _ := json.Marshal(req)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		if created.HolderName != req.HolderName {
			t.Errorf("expected holder name %q, got %q", req.HolderName, created.HolderName)
		}
		if created.Number < 10000 || created.Number > 99999 {
			t.Errorf("expected a five digit account number, got %d", created.Number)
		}
		if !created.Active {
			t.Error("expected account to be active")
		}
	})

	t.Run("duplicate cpf is rejected", func(t *testing.T) {
		req := dto.CreateAccountRequest{
			HolderName: "Impostora",
			CPF:        "52998224725",
			Password:   "correct-horse",
		}
		body, _ := json.Marshal(req)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}
	})

	t.Run("invalid cpf is rejected", func(t *testing.T) {
		req := dto.CreateAccountRequest{
			HolderName: "Bruno Lima",
			CPF:        "111.111.111-11",
			Password:   "correct-horse",
		}
		body, _ := json.Marshal(req)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}
	})

	var token string

	t.Run("login with valid credentials", func(t *testing.T) {
		req := dto.LoginRequest{Number: created.Number, Password: "correct-horse"}
		body, _ := json.Marshal(req)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/login", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.LoginResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Token == "" {
			t.Fatal("expected a token")
		}
		token = resp.Token
	})

	t.Run("login with wrong password", func(t *testing.T) {
		req := dto.LoginRequest{Number: created.Number, Password: "wrong"}
		body, _ := json.Marshal(req)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/login", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d: %s", http.StatusUnauthorized, w.Code, w.Body.String())
		}
	})

	t.Run("get own account with token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.AccountResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Number != created.Number {
			t.Errorf("expected number %d, got %d", created.Number, resp.Number)
		}
	})

	t.Run("new account starts at zero balance", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/balance", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.BalanceResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.Balance.Equal(decimal.Zero) {
			t.Errorf("expected balance 0, got %s", resp.Balance)
		}
	})

	t.Run("protected endpoints require a token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/balance", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})
}
