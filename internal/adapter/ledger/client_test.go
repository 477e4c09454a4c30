package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "agrolend-backend/internal/domain/ledger"
)

func TestGetCollateralBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/accounts/") || !strings.HasSuffix(r.URL.Path, "/collateral") {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"balance": 45_000})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.GetCollateralBalance(context.Background(), "acct-maria")
	if err != nil {
		t.Fatalf("GetCollateralBalance: %v", err)
	}
	if got != 45_000 {
		t.Fatalf("balance = %v", got)
	}
}

func TestGetCollateralBalance_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.GetCollateralBalance(context.Background(), "acct-maria"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestOpenLendingPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/positions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req domain.PositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Principal != 10_000 || req.Collateral != 15_000 {
			t.Errorf("req = %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"tx_ref": "pos-001"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	txRef, err := c.OpenLendingPosition(context.Background(), domain.PositionRequest{
		Lender:     strings.Repeat("i", 32),
		Borrower:   strings.Repeat("p", 32),
		Principal:  10_000,
		Collateral: 15_000,
		Rate:       12,
		TermMonths: 6,
	})
	if err != nil {
		t.Fatalf("OpenLendingPosition: %v", err)
	}
	if txRef != "pos-001" {
		t.Fatalf("txRef = %q", txRef)
	}
}

func TestTransfer_ErrorPayloadSurvives(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transfers" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "account frozen"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Transfer(context.Background(), "acct-maria", 30_000)
	if err == nil || !strings.Contains(err.Error(), "account frozen") {
		t.Fatalf("err = %v", err)
	}
}

func TestTransfer_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body["to"] != "acct-maria" {
			t.Errorf("to = %v", body["to"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"tx_ref": "tx-042"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	txRef, err := c.Transfer(context.Background(), "acct-maria", 30_000)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if txRef != "tx-042" {
		t.Fatalf("txRef = %q", txRef)
	}
}
