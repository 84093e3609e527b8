package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/textra/chorebot/internal/domain/entity"
	"github.com/textra/chorebot/internal/domain/service"
)

// emptyTwiML tells Twilio the webhook was handled and no auto-reply is
// wanted. Returned on every inbound path, including drops and internal
// errors, so the provider never retries.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

type Handler struct {
	services *service.Instance
	log      *logrus.Logger
}

func New(services *service.Instance, log *logrus.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// HandleInboundSMS receives Twilio's form-encoded message webhook.
func (h *Handler) HandleInboundSMS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeTwiML(w)
		return
	}

	event := entity.InboundEvent{
		From:       r.PostFormValue("From"),
		Body:       r.PostFormValue("Body"),
		MessageSID: r.PostFormValue("MessageSid"),
	}

	if err := h.services.Relay.HandleInbound(r.Context(), event); err != nil {
		h.log.WithError(err).Error("Inbound relay failed")
	}

	h.writeTwiML(w)
}

// HandleRunDue triggers one due cycle. Exists alongside the in-process
// cron so an external scheduler can drive the pipeline instead.
func (h *Handler) HandleRunDue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.services.Cycle.RunDueCycle(r.Context(), time.Now().UTC())
	if err != nil {
		h.log.WithError(err).Error("Due cycle failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// HandleSendTest dispatches one bot's chore list immediately without
// touching its schedule state.
func (h *Handler) HandleSendTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		BotID int64 `json:"botId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BotID == 0 {
		http.Error(w, "botId required", http.StatusBadRequest)
		return
	}

	result, err := h.services.Cycle.SendNow(r.Context(), req.BotID)
	if err != nil {
		h.log.WithError(err).WithField("bot_id", req.BotID).Error("Test send failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) writeTwiML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(emptyTwiML)); err != nil {
		h.log.WithError(err).Debug("Failed to write TwiML response")
	}
}
