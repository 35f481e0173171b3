package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/service"
	"github.com/saccotech/sacco-engine/pkg/response"
)

type PaymentHandler struct {
	service   *service.PaymentService
	validator *validator.Validate
}

func NewPaymentHandler(service *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *PaymentHandler) InitiateSTKPush(w http.ResponseWriter, r *http.Request) {
	var req domain.STKPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	res, err := h.service.InitiateSTKPush(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, res)
}

// Webhook acknowledges with the provider's expected shape. Daraja retries on
// a non-zero ResultCode, so processing problems that do not indicate a bad
// payload still return success.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var cb domain.MpesaCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"ResultCode": 1,
			"ResultDesc": "Invalid payload",
		})
		return
	}

	txn, err := h.service.HandleCallback(r.Context(), &cb)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"ResultCode": 1,
			"ResultDesc": "Failed",
		})
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"ResultCode":  0,
		"ResultDesc":  "Accepted",
		"transaction": txn,
	})
}

func (h *PaymentHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Reconcile(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, result)
}
