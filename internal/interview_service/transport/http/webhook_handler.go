package http

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/talentwire/interview-gateway/internal/interview_service/app"
)

// conversationHandler is the state machine entry point the webhook needs.
type conversationHandler interface {
	HandleInbound(ctx context.Context, event app.InboundEvent) (*app.Reply, error)
}

// incomingSMSRequest mirrors the provider's webhook form fields.
type incomingSMSRequest struct {
	From          string `validate:"required"`
	To            string
	Body          string
	MessageStatus string
	SmsStatus     string
	MessageSid    string
}

// twimlResponse is the synchronous reply document the provider expects.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// WebhookHandler receives inbound SMS webhooks and drives the conversation
// state machine.
type WebhookHandler struct {
	conversation conversationHandler
	validate     *validator.Validate
	timeout      time.Duration
	logger       *slog.Logger
}

// NewWebhookHandler creates the handler. timeout bounds each HandleInbound
// call; the provider expects a fast synchronous acknowledgement.
func NewWebhookHandler(conversation conversationHandler, timeout time.Duration, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		conversation: conversation,
		validate:     validator.New(),
		timeout:      timeout,
		logger:       logger.With("handler", "webhook"),
	}
}

// RegisterRoutes registers webhook routes with the given router.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/sms", h.handleIncomingSMS)
}

func (h *WebhookHandler) handleIncomingSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi_middleware.GetReqID(ctx)
	logger := h.logger.With("request_id", requestID)

	if err := r.ParseForm(); err != nil {
		logger.ErrorContext(ctx, "Failed to parse webhook form", "error", err)
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	req := incomingSMSRequest{
		From:          r.PostFormValue("From"),
		To:            r.PostFormValue("To"),
		Body:          r.PostFormValue("Body"),
		MessageStatus: r.PostFormValue("MessageStatus"),
		SmsStatus:     r.PostFormValue("SmsStatus"),
		MessageSid:    r.PostFormValue("MessageSid"),
	}

	if err := h.validate.Struct(req); err != nil {
		logger.WarnContext(ctx, "Invalid webhook payload", "error", err)
		http.Error(w, "invalid webhook payload", http.StatusBadRequest)
		return
	}

	deliveryStatus := req.MessageStatus
	if deliveryStatus == "" {
		deliveryStatus = req.SmsStatus
	}

	event := app.InboundEvent{
		From:              req.From,
		To:                req.To,
		Body:              req.Body,
		DeliveryStatus:    strings.ToLower(deliveryStatus),
		ProviderMessageID: req.MessageSid,
	}

	handleCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		handleCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	reply, err := h.conversation.HandleInbound(handleCtx, event)
	if err != nil {
		// The provider retries on non-2xx; reply with a generic text instead
		// so the candidate is not left hanging.
		logger.ErrorContext(ctx, "Conversation handling failed", "error", err, "from", req.From)
		h.writeTwiML(w, logger, "Unexpected error. Please try again.")
		return
	}

	if reply == nil {
		h.writeTwiML(w, logger, "")
		return
	}
	h.writeTwiML(w, logger, reply.Text)
}

func (h *WebhookHandler) writeTwiML(w http.ResponseWriter, logger *slog.Logger, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		logger.Error("Failed to write TwiML header", "error", err)
		return
	}
	if err := xml.NewEncoder(w).Encode(twimlResponse{Message: message}); err != nil {
		logger.Error("Failed to encode TwiML response", "error", err)
	}
}
