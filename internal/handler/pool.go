package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/service"
	"github.com/saccotech/sacco-engine/pkg/response"
)

type PoolHandler struct {
	service   *service.PoolService
	validator *validator.Validate
}

func NewPoolHandler(service *service.PoolService) *PoolHandler {
	return &PoolHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *PoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	pool, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, pool)
}

func (h *PoolHandler) List(w http.ResponseWriter, r *http.Request) {
	pools, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, pools)
}

func (h *PoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	pool, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	contributions, err := h.service.Contributions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.PoolResponse{Pool: pool, Contributions: contributions})
}

func (h *PoolHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req domain.PoolContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	pc, err := h.service.Contribute(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, pc)
}
