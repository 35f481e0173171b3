package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/service"
	"github.com/saccotech/sacco-engine/pkg/response"
)

type ContributionHandler struct {
	service   *service.ContributionService
	validator *validator.Validate
}

func NewContributionHandler(service *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *ContributionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}
	if !req.Amount.IsPositive() {
		response.BadRequest(w, "Contribution amount must be positive", nil)
		return
	}

	contribution, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, contribution)
}
