package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
	"github.com/saccotech/sacco-engine/internal/repository/memory"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
	"github.com/saccotech/sacco-engine/tests/mocks"
)

type paymentFixture struct {
	stores  *repository.Stores
	gateway *mocks.MockPaymentGateway
	svc     *PaymentService
	ledger  *LedgerService
	member  *domain.Member
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	ctx := context.Background()

	stores := memory.NewStores()
	ledger := NewLedgerService(stores.Journal)
	cfg := newTestConfig()
	contributions := NewContributionService(stores, ledger, NewBusinessRules(cfg))
	gw := new(mocks.MockPaymentGateway)
	svc := NewPaymentService(stores, contributions, gw)

	member := &domain.Member{
		ID:           uuid.New(),
		MemberNumber: "M-0002",
		FirstName:    "Peter",
		LastName:     "Otieno",
		NationalID:   "87654321",
		Phone:        "254712345678",
		JoinDate:     time.Now().AddDate(-1, 0, 0),
		Status:       domain.MemberStatusActive,
		KYCVerified:  true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	assert.NoError(t, stores.Members.Create(ctx, member))

	return &paymentFixture{stores: stores, gateway: gw, svc: svc, ledger: ledger, member: member}
}

func stkCallback(t *testing.T, checkoutID string, resultCode int, amount float64, receipt, phone string) *domain.MpesaCallback {
	t.Helper()

	metadata := ""
	if resultCode == 0 {
		metadata = fmt.Sprintf(`,"CallbackMetadata":{"Item":[
			{"Name":"Amount","Value":%v},
			{"Name":"MpesaReceiptNumber","Value":%q},
			{"Name":"PhoneNumber","Value":%q}
		]}`, amount, receipt, phone)
	}
	payload := fmt.Sprintf(`{"Body":{"stkCallback":{
		"MerchantRequestID":"mr-1",
		"CheckoutRequestID":%q,
		"ResultCode":%d,
		"ResultDesc":"test"%s
	}}}`, checkoutID, resultCode, metadata)

	var cb domain.MpesaCallback
	assert.NoError(t, json.Unmarshal([]byte(payload), &cb))
	return &cb
}

func TestPaymentService_InitiateSTKPush(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	req := &domain.STKPushRequest{
		Phone:      f.member.Phone,
		Amount:     decimal.NewFromInt(5000),
		AccountRef: f.member.MemberNumber,
	}
	f.gateway.On("InitiateSTKPush", tmock.Anything, req).Return(&domain.STKPushResponse{
		RequestID: "chk-001",
		Status:    domain.PaymentStatusPending,
		Provider:  domain.PaymentProviderMpesa,
	}, nil)

	res, err := f.svc.InitiateSTKPush(ctx, req)
	assert.NoError(t, err)
	assert.Equal(t, "chk-001", res.RequestID)

	txn, err := f.stores.Transactions.GetByExternalID(ctx, "chk-001")
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, txn.Status)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(5000)))
	f.gateway.AssertExpectations(t)
}

func TestPaymentService_InitiateSTKPush_RejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	_, err := f.svc.InitiateSTKPush(ctx, &domain.STKPushRequest{
		Phone:  f.member.Phone,
		Amount: decimal.Zero,
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrInvalidAmount)
	f.gateway.AssertNotCalled(t, "InitiateSTKPush")
}

func TestPaymentService_HandleCallback_SettlesContribution(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	txn := &domain.PaymentTransaction{
		ID:         uuid.New(),
		Provider:   domain.PaymentProviderMpesa,
		Type:       domain.PaymentTypeContribution,
		Status:     domain.PaymentStatusPending,
		Currency:   "KES",
		Phone:      f.member.Phone,
		ExternalID: "chk-100",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	assert.NoError(t, f.stores.Transactions.Create(ctx, txn))

	cb := stkCallback(t, "chk-100", 0, 5000, "SBK12XYZ", f.member.Phone)
	settled, err := f.svc.HandleCallback(ctx, cb)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, settled.Status)
	assert.NotNil(t, settled.MemberID)
	assert.Equal(t, f.member.ID, *settled.MemberID)

	contribs, err := f.stores.Contributions.ListByMember(ctx, f.member.ID)
	assert.NoError(t, err)
	assert.Len(t, contribs, 1)
	assert.Equal(t, domain.PaymentProviderMpesa, contribs[0].Source)
	assert.Equal(t, "SBK12XYZ", contribs[0].Reference)
	assert.True(t, contribs[0].Amount.Equal(decimal.NewFromInt(5000)))

	// The contribution carried its posting into the ledger.
	tb, err := f.ledger.TrialBalance(ctx)
	assert.NoError(t, err)
	assert.True(t, tb[domain.AccountBank].Equal(decimal.NewFromInt(5000)))
	assert.True(t, tb[domain.AccountMemberSavings].Equal(decimal.NewFromInt(-5000)))
}

func TestPaymentService_HandleCallback_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	txn := &domain.PaymentTransaction{
		ID:         uuid.New(),
		Provider:   domain.PaymentProviderMpesa,
		Type:       domain.PaymentTypeContribution,
		Status:     domain.PaymentStatusPending,
		Currency:   "KES",
		Phone:      f.member.Phone,
		ExternalID: "chk-200",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	assert.NoError(t, f.stores.Transactions.Create(ctx, txn))

	cb := stkCallback(t, "chk-200", 0, 3000, "SBK99ABC", f.member.Phone)

	_, err := f.svc.HandleCallback(ctx, cb)
	assert.NoError(t, err)

	// A replayed callback is acknowledged without re-applying anything.
	again, err := f.svc.HandleCallback(ctx, cb)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, again.Status)

	contribs, err := f.stores.Contributions.ListByMember(ctx, f.member.ID)
	assert.NoError(t, err)
	assert.Len(t, contribs, 1)
}

func TestPaymentService_HandleCallback_Failure(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	txn := &domain.PaymentTransaction{
		ID:         uuid.New(),
		Provider:   domain.PaymentProviderMpesa,
		Type:       domain.PaymentTypeContribution,
		Status:     domain.PaymentStatusPending,
		Currency:   "KES",
		Phone:      f.member.Phone,
		ExternalID: "chk-300",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	assert.NoError(t, f.stores.Transactions.Create(ctx, txn))

	cb := stkCallback(t, "chk-300", 1032, 0, "", "")
	failed, err := f.svc.HandleCallback(ctx, cb)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, failed.Status)

	contribs, err := f.stores.Contributions.ListByMember(ctx, f.member.ID)
	assert.NoError(t, err)
	assert.Empty(t, contribs)
}

func TestPaymentService_HandleCallback_LocalPhoneForm(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	// Member is registered with the local 07xx form; the provider sends the
	// international form.
	f.member.Phone = "0712345678"
	assert.NoError(t, f.stores.Members.Update(ctx, f.member))

	txn := &domain.PaymentTransaction{
		ID:         uuid.New(),
		Provider:   domain.PaymentProviderMpesa,
		Type:       domain.PaymentTypeContribution,
		Status:     domain.PaymentStatusPending,
		Currency:   "KES",
		ExternalID: "chk-400",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	assert.NoError(t, f.stores.Transactions.Create(ctx, txn))

	cb := stkCallback(t, "chk-400", 0, 2000, "SBK55DEF", "254712345678")
	settled, err := f.svc.HandleCallback(ctx, cb)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, settled.Status)
	assert.NotNil(t, settled.MemberID)
	assert.Equal(t, f.member.ID, *settled.MemberID)
}

func TestPaymentService_Reconcile(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	settling := &domain.PaymentTransaction{
		ID:         uuid.New(),
		Provider:   domain.PaymentProviderMpesa,
		Type:       domain.PaymentTypeContribution,
		Status:     domain.PaymentStatusPending,
		Amount:     decimal.NewFromInt(4000),
		Currency:   "KES",
		Phone:      f.member.Phone,
		ExternalID: "chk-500",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	assert.NoError(t, f.stores.Transactions.Create(ctx, settling))

	stuck := &domain.PaymentTransaction{
		ID:         uuid.New(),
		Provider:   domain.PaymentProviderMpesa,
		Type:       domain.PaymentTypeContribution,
		Status:     domain.PaymentStatusPending,
		Amount:     decimal.NewFromInt(1500),
		Currency:   "KES",
		Phone:      f.member.Phone,
		ExternalID: "chk-501",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	assert.NoError(t, f.stores.Transactions.Create(ctx, stuck))

	f.gateway.On("QueryTransaction", tmock.Anything, "chk-500").Return(domain.PaymentStatusSuccess, nil)
	f.gateway.On("QueryTransaction", tmock.Anything, "chk-501").Return(domain.PaymentStatusPending, nil)

	result, err := f.svc.Reconcile(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Matched)

	got, err := f.stores.Transactions.GetByExternalID(ctx, "chk-500")
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, got.Status)

	got, err = f.stores.Transactions.GetByExternalID(ctx, "chk-501")
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.Status)

	contribs, err := f.stores.Contributions.ListByMember(ctx, f.member.ID)
	assert.NoError(t, err)
	assert.Len(t, contribs, 1)
	f.gateway.AssertExpectations(t)
}
