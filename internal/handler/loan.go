package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/service"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
	"github.com/saccotech/sacco-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, schedule, err := h.service.Apply(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, &domain.LoanResponse{Loan: loan, Schedule: schedule})
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, loans)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, schedule, err := h.service.Approve(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.LoanResponse{Loan: loan, Schedule: schedule})
}

func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.Disburse(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req domain.RepayLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}
	if !req.Amount.IsPositive() {
		response.BadRequest(w, "Repayment amount must be positive", nil)
		return
	}

	repayment, loan, err := h.service.Repay(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.RepaymentResponse{Repayment: repayment, Loan: loan})
}

func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	schedule, err := h.service.Schedule(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, schedule)
}

func (h *LoanHandler) Repayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	repayments, err := h.service.Repayments(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, repayments)
}

func (h *LoanHandler) MemberRisk(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	risk, err := h.service.AssessRisk(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, map[string]string{"risk_level": risk})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps the error taxonomy onto HTTP statuses: not-found to
// 404, invalid input to 400, business rules to 422, transitions to 409,
// everything else to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customError.ErrLoanNotFound),
		errors.Is(err, customError.ErrMemberNotFound),
		errors.Is(err, customError.ErrPoolNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, customError.ErrInvalidAmount):
		response.BadRequest(w, "Invalid amount", err)
	case errors.Is(err, customError.ErrInvalidTransition),
		errors.Is(err, customError.ErrDuplicateMember),
		errors.Is(err, customError.ErrDuplicateTransaction):
		response.Conflict(w, "Conflict", err)
	case errors.Is(err, customError.ErrBusinessRule),
		errors.Is(err, customError.ErrMemberNotEligible):
		response.UnprocessableEntity(w, "Business rule violation", err)
	default:
		response.InternalServerError(w, "Internal error", err)
	}
}
