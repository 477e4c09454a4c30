package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainLoan "agrolend-backend/internal/domain/loan"
	"agrolend-backend/internal/domain/user"
	"agrolend-backend/internal/testutil/ledgermock"
	"agrolend-backend/internal/testutil/memstore"
	"agrolend-backend/internal/testutil/usermock"
	"agrolend-backend/internal/usecase/marketplace"

	"github.com/labstack/echo/v4"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

var (
	testProducer = &user.Identity{UserID: strings.Repeat("p", 32), Role: user.RoleProducer, CollateralAccount: "acct-p"}
	testInvestor = &user.Identity{UserID: strings.Repeat("i", 32), Role: user.RoleInvestor, CollateralAccount: "acct-i"}
)

type marketFixture struct {
	uc    *marketplace.Usecase
	loans *memstore.Loans
}

func newMarketFixture(balance float64) *marketFixture {
	loans := memstore.NewLoans()
	uow := memstore.NewUoW(loans, memstore.NewRepayments(), memstore.NewAlerts())
	lg := &ledgermock.Ledger{
		GetCollateralBalanceFn: func(ctx context.Context, accountRef string) (float64, error) {
			return balance, nil
		},
	}
	dir := &usermock.Directory{Users: map[string]*user.Identity{
		testProducer.UserID: testProducer,
		testInvestor.UserID: testInvestor,
	}}
	return &marketFixture{uc: marketplace.NewUsecase(loans, uow, dir, lg), loans: loans}
}

func (f *marketFixture) seedOpenLoan(t *testing.T, requested float64) string {
	t.Helper()

	l := &domainLoan.LoanRequest{
		LoanID:            strings.Repeat("a", 32),
		ProducerID:        testProducer.UserID,
		RequestedAmount:   requested,
		TermMonths:        6,
		MaxInterestRate:   12,
		CollateralAmount:  200,
		CollateralType:    "soy",
		UnitPrice:         300,
		WarehouseLocation: "Sorriso-MT",
		Status:            domainLoan.StatusOpen,
		ExpiresAt:         time.Now().UTC().Add(24 * time.Hour),
	}
	if err := f.loans.Create(context.Background(), l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return l.LoanID
}

func newCtx(e *echo.Echo, method, target string, body *bytes.Reader, ident *user.Identity) (echo.Context, *httptest.ResponseRecorder) {
	var req *stdhttp.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if ident != nil {
		c.Set(identityKey, ident)
	}
	return c, rec
}

// -------- tests --------

func TestCreateLoan_Success(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(0)
	h := NewMarketplaceHandler(f.uc)

	c, rec := newCtx(e, stdhttp.MethodPost, "/marketplace/loans", mustJSON(map[string]any{
		"requested_amount":   30000,
		"term_months":        6,
		"max_interest_rate":  12,
		"collateral_amount":  200,
		"collateral_type":    "soy",
		"unit_price":         300,
		"warehouse_location": "Sorriso-MT",
	}), testProducer)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	var got marketplace.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.ProducerID != testProducer.UserID || got.Status != string(domainLoan.StatusOpen) {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.RiskTier != "A" {
		t.Fatalf("tier = %s", got.RiskTier)
	}
}

func TestCreateLoan_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(0)
	h := NewMarketplaceHandler(f.uc)

	c, rec := newCtx(e, stdhttp.MethodPost, "/marketplace/loans", mustJSON(map[string]any{
		"requested_amount":  30000.123, // 3 decimal places
		"term_months":       6,
		"max_interest_rate": 12,
		"collateral_amount": 200,
		"collateral_type":   "oil", // not a warehouse commodity
		"unit_price":        300,
	}), testProducer)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !containsFieldMsg(er.Details, "RequestedAmount", "2 decimal places") {
		t.Fatalf("missing dec2 error: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "CollateralType", "commodity") {
		t.Fatalf("missing commodity error: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "WarehouseLocation", "required") {
		t.Fatalf("missing required error: %+v", er.Details)
	}
}

func TestCreateLoan_RequiresProducer(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(0)
	h := NewMarketplaceHandler(f.uc)

	c, rec := newCtx(e, stdhttp.MethodPost, "/marketplace/loans", mustJSON(map[string]any{
		"requested_amount":   30000,
		"term_months":        6,
		"max_interest_rate":  12,
		"collateral_amount":  200,
		"collateral_type":    "soy",
		"unit_price":         300,
		"warehouse_location": "Sorriso-MT",
	}), testInvestor)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if er.Code != "PRODUCER_ROLE_REQUIRED" {
		t.Fatalf("code = %s", er.Code)
	}
}

func TestInvest_Accepted(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(1_000_000)
	h := NewMarketplaceHandler(f.uc)
	loanID := f.seedOpenLoan(t, 30_000)

	c, rec := newCtx(e, stdhttp.MethodPost, "/marketplace/loans/"+loanID+"/investments",
		mustJSON(map[string]any{"amount": 10000}), testInvestor)
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)

	if err := h.Invest(c); err != nil {
		t.Fatalf("Invest error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	var res marketplace.InvestResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !res.Accepted || res.TxRef == "" {
		t.Fatalf("result = %+v", res)
	}
	if res.Loan.CurrentFunding != 10_000 || res.Loan.Status != string(domainLoan.StatusFunding) {
		t.Fatalf("loan = %+v", res.Loan)
	}
}

func TestInvest_BusinessRejectionIs422(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(1_000) // far below the 1.5x requirement
	h := NewMarketplaceHandler(f.uc)
	loanID := f.seedOpenLoan(t, 30_000)

	c, rec := newCtx(e, stdhttp.MethodPost, "/marketplace/loans/"+loanID+"/investments",
		mustJSON(map[string]any{"amount": 10000}), testInvestor)
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)

	if err := h.Invest(c); err != nil {
		t.Fatalf("Invest error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var res marketplace.InvestResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if res.Accepted || res.Reason != "INSUFFICIENT_COLLATERAL" {
		t.Fatalf("result = %+v", res)
	}
}

func TestInvest_UnknownLoanIs404(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(1_000_000)
	h := NewMarketplaceHandler(f.uc)

	missing := strings.Repeat("f", 32)
	c, rec := newCtx(e, stdhttp.MethodPost, "/marketplace/loans/"+missing+"/investments",
		mustJSON(map[string]any{"amount": 10000}), testInvestor)
	c.SetParamNames("loan_id")
	c.SetParamValues(missing)

	if err := h.Invest(c); err != nil {
		t.Fatalf("Invest error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetLoan_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(0)
	h := NewMarketplaceHandler(f.uc)

	missing := strings.Repeat("f", 32)
	c, rec := newCtx(e, stdhttp.MethodGet, "/marketplace/loans/"+missing, nil, nil)
	c.SetParamNames("loan_id")
	c.SetParamValues(missing)

	if err := h.GetLoan(c); err != nil {
		t.Fatalf("GetLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPosition_UnknownLoanStillOK(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(0)
	h := NewMarketplaceHandler(f.uc)

	missing := strings.Repeat("f", 32)
	c, rec := newCtx(e, stdhttp.MethodGet, "/marketplace/loans/"+missing+"/position", nil, testInvestor)
	c.SetParamNames("loan_id")
	c.SetParamValues(missing)

	if err := h.Position(c); err != nil {
		t.Fatalf("Position error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var pos marketplace.Position
	if err := json.Unmarshal(rec.Body.Bytes(), &pos); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if pos.Position != "none" || pos.Status != "not_found" {
		t.Fatalf("position = %+v", pos)
	}
}

func TestLiquidate(t *testing.T) {
	e := newEchoWithValidator()
	f := newMarketFixture(1_000_000)
	h := NewMarketplaceHandler(f.uc)
	loanID := f.seedOpenLoan(t, 30_000)

	// open loans carry no exposure yet
	c, rec := newCtx(e, stdhttp.MethodPost, "/marketplace/loans/"+loanID+"/liquidate",
		mustJSON(map[string]any{"reason": "price collapse"}), testProducer)
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)

	if err := h.Liquidate(c); err != nil {
		t.Fatalf("Liquidate error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
