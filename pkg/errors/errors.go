package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrPoolNotFound         = errors.New("investment pool not found")
	ErrDuplicateMember      = errors.New("member number or national id already registered")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidTransition    = errors.New("loan status does not allow this transition")
	ErrMemberNotEligible    = errors.New("member does not meet loan eligibility requirements")
	ErrBusinessRule         = errors.New("business rule violation")
	ErrDuplicateTransaction = errors.New("payment transaction already recorded")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes. The code families map to the failure conditions the handlers
// translate into HTTP statuses: NOT_FOUND, VALIDATION, BUSINESS_RULE,
// INVARIANT and DATABASE.
const (
	ErrCodeMemberNotFound    = "MEMBER_NOT_FOUND"
	ErrCodeLoanNotFound      = "LOAN_NOT_FOUND"
	ErrCodePoolNotFound      = "POOL_NOT_FOUND"
	ErrCodeDuplicateMember   = "MEMBER_ALREADY_EXISTS"
	ErrCodeInvalidAmount     = "INVALID_AMOUNT"
	ErrCodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeMemberNotEligible = "MEMBER_NOT_ELIGIBLE"
	ErrCodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	ErrCodeDuplicateTxn      = "DUPLICATE_TRANSACTION"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeCacheError        = "CACHE_ERROR"
	ErrCodeGatewayError      = "GATEWAY_ERROR"
)

// Wrap common errors with business context

func WrapMemberNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", id),
		ErrMemberNotFound,
	)
}

func WrapLoanNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", id),
		ErrLoanNotFound,
	)
}

func WrapPoolNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePoolNotFound,
		fmt.Sprintf("Investment pool with ID %s not found", id),
		ErrPoolNotFound,
	)
}

func WrapDuplicateMember(memberNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateMember,
		fmt.Sprintf("Member %s already exists", memberNumber),
		ErrDuplicateMember,
	)
}

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapInvalidTransition(loanID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Loan %s cannot move from %s to %s", loanID, from, to),
		ErrInvalidTransition,
	)
}

func WrapMemberNotEligible(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotEligible,
		reason,
		ErrMemberNotEligible,
	)
}

func WrapBusinessRule(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeBusinessRule,
		message,
		ErrBusinessRule,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}

func WrapGatewayError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeGatewayError,
		"payment gateway call failed",
		err,
	)
}
