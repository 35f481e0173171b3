package handler

import (
	"net/http"

	"github.com/saccotech/sacco-engine/internal/service"
	"github.com/saccotech/sacco-engine/pkg/response"
)

// ReportHandler exposes the statements derived from the journal.
type ReportHandler struct {
	ledger *service.LedgerService
}

func NewReportHandler(ledger *service.LedgerService) *ReportHandler {
	return &ReportHandler{ledger: ledger}
}

func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	tb, err := h.ledger.TrialBalance(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, tb)
}

func (h *ReportHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	bs, err := h.ledger.BalanceSheet(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, bs)
}

func (h *ReportHandler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	pl, err := h.ledger.ProfitAndLoss(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, pl)
}
