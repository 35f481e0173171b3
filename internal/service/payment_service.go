package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/gateway"
	"github.com/saccotech/sacco-engine/internal/repository"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
)

// PaymentService drives M-Pesa collections: STK push initiation, webhook
// settlement and the pending-transaction reconciliation sweep. Settlement is
// idempotent on the provider's CheckoutRequestID.
type PaymentService struct {
	transactions  repository.TransactionRepository
	members       repository.MemberRepository
	contributions *ContributionService
	gateway       gateway.PaymentGateway
}

func NewPaymentService(
	stores *repository.Stores,
	contributions *ContributionService,
	gw gateway.PaymentGateway,
) *PaymentService {
	return &PaymentService{
		transactions:  stores.Transactions,
		members:       stores.Members,
		contributions: contributions,
		gateway:       gw,
	}
}

// InitiateSTKPush asks the gateway to prompt the phone and records a PENDING
// transaction keyed by the provider request id.
func (s *PaymentService) InitiateSTKPush(ctx context.Context, req *domain.STKPushRequest) (*domain.STKPushResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(req.Amount.String())
	}

	res, err := s.gateway.InitiateSTKPush(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txn := &domain.PaymentTransaction{
		ID:         uuid.New(),
		Provider:   domain.PaymentProviderMpesa,
		Type:       domain.PaymentTypeContribution,
		Status:     res.Status,
		Amount:     req.Amount,
		Currency:   "KES",
		Phone:      req.Phone,
		ExternalID: res.RequestID,
		AccountRef: req.AccountRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return res, nil
}

// HandleCallback settles an STK push result. A repeated callback for an
// already-settled transaction is acknowledged without re-applying it. A
// successful payment whose phone matches a member becomes a CONFIRMED savings
// contribution, which carries its own ledger posting.
func (s *PaymentService) HandleCallback(ctx context.Context, cb *domain.MpesaCallback) (*domain.PaymentTransaction, error) {
	stk := cb.Body.STKCallback
	if stk.CheckoutRequestID == "" {
		return nil, customError.WrapBusinessRule("invalid callback format")
	}

	txn, err := s.transactions.GetByExternalID(ctx, stk.CheckoutRequestID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDatabaseError(err)
		}
		now := time.Now()
		txn = &domain.PaymentTransaction{
			ID:         uuid.New(),
			Provider:   domain.PaymentProviderMpesa,
			Type:       domain.PaymentTypeContribution,
			Status:     domain.PaymentStatusPending,
			Currency:   "KES",
			ExternalID: stk.CheckoutRequestID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.transactions.Create(ctx, txn); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	if txn.Status != domain.PaymentStatusPending {
		return txn, nil
	}

	if stk.ResultCode != 0 {
		txn.Status = domain.PaymentStatusFailed
		if err := s.transactions.Update(ctx, txn); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		return txn, nil
	}

	amount, receipt, phone := callbackDetails(stk.CallbackMetadata)
	if amount.IsPositive() {
		txn.Amount = amount
	}
	if phone != "" {
		txn.Phone = phone
	}
	txn.Status = domain.PaymentStatusSuccess
	if err := s.transactions.Update(ctx, txn); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.settle(ctx, txn, receipt); err != nil {
		// The money arrived either way; an unmatched phone just means no
		// contribution record yet.
		log.Printf("mpesa settlement left unmatched for %s: %v", txn.ExternalID, err)
	}

	return txn, nil
}

// Reconcile queries the gateway for every pending transaction and settles the
// ones the provider reports as successful.
func (s *PaymentService) Reconcile(ctx context.Context) (*domain.ReconcileResult, error) {
	pending, err := s.transactions.ListPending(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result := &domain.ReconcileResult{}
	for _, txn := range pending {
		if txn.ExternalID == "" {
			continue
		}
		result.Checked++

		status, err := s.gateway.QueryTransaction(ctx, txn.ExternalID)
		if err != nil {
			log.Printf("reconcile query failed for %s: %v", txn.ExternalID, err)
			continue
		}
		if status != domain.PaymentStatusSuccess {
			continue
		}

		txn.Status = domain.PaymentStatusSuccess
		if err := s.transactions.Update(ctx, txn); err != nil {
			log.Printf("reconcile update failed for %s: %v", txn.ExternalID, err)
			continue
		}

		if err := s.settle(ctx, txn, txn.ExternalID); err != nil {
			log.Printf("reconcile settlement left unmatched for %s: %v", txn.ExternalID, err)
			continue
		}
		result.Matched++
	}

	return result, nil
}

// settle turns a successful contribution-type transaction into a CONFIRMED
// savings contribution for the member matching its phone number.
func (s *PaymentService) settle(ctx context.Context, txn *domain.PaymentTransaction, reference string) error {
	if txn.Type != domain.PaymentTypeContribution || !txn.Amount.IsPositive() {
		return nil
	}

	member, err := s.matchMemberByPhone(ctx, txn.Phone)
	if err != nil {
		return err
	}

	_, err = s.contributions.Create(ctx, &domain.CreateContributionRequest{
		MemberID:  member.ID,
		Amount:    txn.Amount,
		Date:      time.Now(),
		Type:      domain.ContributionTypeSavings,
		Source:    domain.PaymentProviderMpesa,
		Reference: reference,
	})
	if err != nil {
		return err
	}

	memberID := member.ID
	txn.MemberID = &memberID
	if err := s.transactions.Update(ctx, txn); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// matchMemberByPhone tries the number as sent and in local 07xx form.
func (s *PaymentService) matchMemberByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	if phone == "" {
		return nil, customError.WrapBusinessRule("callback carried no phone number")
	}

	member, err := s.members.GetByPhone(ctx, phone)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(phone) > 3 {
		member, err = s.members.GetByPhone(ctx, "0"+phone[3:])
		if err == nil {
			return member, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	return nil, customError.WrapBusinessRule(fmt.Sprintf("no member matches phone %s", phone))
}

func callbackDetails(meta *struct {
	Item []domain.MpesaCallbackItem `json:"Item"`
}) (amount decimal.Decimal, receipt, phone string) {
	if meta == nil {
		return decimal.Zero, "", ""
	}
	for _, item := range meta.Item {
		switch item.Name {
		case "Amount":
			switch v := item.Value.(type) {
			case float64:
				amount = decimal.NewFromFloat(v)
			case string:
				amount, _ = decimal.NewFromString(v)
			}
		case "MpesaReceiptNumber":
			if v, ok := item.Value.(string); ok {
				receipt = v
			}
		case "PhoneNumber":
			switch v := item.Value.(type) {
			case string:
				phone = v
			case float64:
				phone = decimal.NewFromFloat(v).String()
			}
		}
	}
	return amount, receipt, phone
}
