package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/saccotech/sacco-engine/internal/config"
	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
	"github.com/saccotech/sacco-engine/internal/repository/memory"
	"github.com/saccotech/sacco-engine/internal/service"
)

type handlerFixture struct {
	stores *repository.Stores
	router *mux.Router
	member *domain.Member
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		Business: config.BusinessConfig{
			MinLoanAmount:        "1000",
			MaxLoanAmount:        "1000000",
			MinContribution:      "100",
			MaxContribution:      "500000",
			OverpaymentTolerance: "1.1",
			EligibilityMonths:    6,
			EligibilityContribs:  3,
			ScheduleCacheTTL:     "24h",
		},
	}

	stores := memory.NewStores()
	ledger := service.NewLedgerService(stores.Journal)
	rules := service.NewBusinessRules(cfg)
	loans := service.NewLoanService(stores, ledger, rules, nil, cfg)
	h := NewLoanHandler(loans)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/loans", h.Apply).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/loans", h.List).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/loans/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/loans/{id}/approve", h.Approve).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/loans/{id}/disburse", h.Disburse).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/loans/{id}/repay", h.Repay).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/loans/{id}/schedule", h.Schedule).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/loans/{id}/repayments", h.Repayments).Methods(http.MethodGet)

	member := &domain.Member{
		ID:          uuid.New(),
		JoinDate:    time.Now().AddDate(-1, 0, 0),
		Status:      domain.MemberStatusActive,
		KYCVerified: true,
	}
	assert.NoError(t, stores.Members.Create(ctx, member))
	for i := 0; i < 3; i++ {
		assert.NoError(t, stores.Contributions.Create(ctx, &domain.Contribution{
			ID:       uuid.New(),
			MemberID: member.ID,
			Amount:   decimal.NewFromInt(5000),
			Status:   domain.ContributionStatusConfirmed,
		}))
	}

	return &handlerFixture{stores: stores, router: router, member: member}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestLoanHandler_Apply(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/loans", map[string]interface{}{
		"member_id":           f.member.ID,
		"principal":           "100000",
		"interest_rate":       "12",
		"term_months":         12,
		"repayment_frequency": domain.FrequencyMonthly,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data domain.LoanResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.LoanStatusPending, body.Data.Loan.Status)
	assert.Len(t, body.Data.Schedule, 12)
}

func TestLoanHandler_Apply_BadBody(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoanHandler_ErrorStatusMapping(t *testing.T) {
	f := newHandlerFixture(t)

	// Unknown loan id maps to 404.
	rec := f.do(t, http.MethodGet, "/api/v1/loans/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed id maps to 400.
	rec = f.do(t, http.MethodGet, "/api/v1/loans/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Applying over the maximum maps to 422.
	rec = f.do(t, http.MethodPost, "/api/v1/loans", map[string]interface{}{
		"member_id":           f.member.ID,
		"principal":           "5000000",
		"interest_rate":       "12",
		"term_months":         12,
		"repayment_frequency": domain.FrequencyMonthly,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoanHandler_Lifecycle(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/loans", map[string]interface{}{
		"member_id":           f.member.ID,
		"principal":           "100000",
		"interest_rate":       "12",
		"term_months":         12,
		"repayment_frequency": domain.FrequencyMonthly,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data domain.LoanResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.Loan.ID.String()

	// Disbursing before approval maps to 409.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/loans/%s/disburse", id), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/loans/%s/approve", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/loans/%s/disburse", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/loans/%s/repay", id), map[string]interface{}{
		"amount": "10000",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var repaid struct {
		Data domain.RepaymentResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &repaid))
	assert.True(t, repaid.Data.Loan.PrincipalOutstanding.Equal(decimal.NewFromInt(90000)))

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/loans/%s/schedule", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/loans/%s/repayments", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Data []domain.Repayment `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history.Data, 1)
	assert.True(t, history.Data[0].Amount.Equal(decimal.NewFromInt(10000)))
}
