package handler

import (
	"io"
	"log/slog"
	"net/http"

	"ramenco/internal/service"
)

// WebhookHandler receives payment lifecycle notifications. The endpoint
// acknowledges every verified payload, even when a side effect fails: the
// provider cannot fix a broken spreadsheet by retrying, and an error response
// here only triggers redeliveries we would process identically.
func WebhookHandler(webhookSvc *service.WebhookService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			slog.Error("webhook body read failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Webhook processing failed")
			return
		}

		event, err := webhookSvc.VerifyAndParse(body, r.Header)
		if err != nil {
			slog.Error("webhook rejected", "error", err)
			writeError(w, http.StatusInternalServerError, "Webhook processing failed")
			return
		}

		webhookSvc.Process(r.Context(), event)

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
