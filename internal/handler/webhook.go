package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lokanta/reservations/internal/bot"
	"github.com/lokanta/reservations/internal/model"
	"github.com/lokanta/reservations/internal/repository"
	"github.com/lokanta/reservations/internal/service"
)

// nextActionRelay tells the caller that delivering the reply to the chat
// provider is the job of the external relay, not of this service.
const nextActionRelay = "relay reply to the messaging provider"

// WebhookPayload is the inbound delivery body.  All fields are optional at
// the schema level; missing ids are rejected and missing from/text produce
// a conversational reply rather than an error.
type WebhookPayload struct {
	EventID   string `json:"eventId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	From      string `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// WebhookHandler terminates the messaging provider's webhook: GET for the
// subscription handshake, POST for message deliveries.  Deliveries pass
// through the ingest guard before reaching the state machine, so replays
// are answered with a success no-op and cause no side effects.
type WebhookHandler struct {
	Guard       *service.IngestGuard
	Bot         *bot.StateMachine
	Messages    bot.MessageStore
	VerifyToken string
	Logger      *zap.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(guard *service.IngestGuard, machine *bot.StateMachine, messages bot.MessageStore, verifyToken string, logger *zap.Logger) *WebhookHandler {
	if guard == nil || machine == nil || messages == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Guard: guard, Bot: machine, Messages: messages, VerifyToken: verifyToken, Logger: logger}
}

// Verify handles the provider's GET handshake.  It echoes hub.challenge as
// plain text iff hub.mode is "subscribe" and hub.verify_token matches the
// configured secret; anything else is a 403.
func (h *WebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")
	if mode == "subscribe" && token != "" && challenge != "" && token == h.VerifyToken {
		return c.String(http.StatusOK, challenge)
	}
	return c.JSON(http.StatusForbidden, echo.Map{"ok": false})
}

// Receive handles one webhook delivery.  Flow: shared-secret check, dedupe
// through the ingest guard, state machine, reply.  Duplicate deliveries
// return {ok:true, duplicate:true} without further processing so the
// upstream relay stops retrying.
func (h *WebhookHandler) Receive(c echo.Context) error {
	if h.VerifyToken != "" && c.Request().Header.Get("x-webhook-token") != h.VerifyToken {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var payload WebhookPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	externalID := payload.EventID
	if externalID == "" {
		externalID = payload.MessageID
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process event"})
	}
	ctx := c.Request().Context()
	if err := h.Guard.Admit(ctx, bot.Provider, externalID, string(raw)); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingExternalID):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing external id"})
		case errors.Is(err, repository.ErrDuplicateEvent):
			return c.JSON(http.StatusOK, echo.Map{"ok": true, "duplicate": true})
		}
		h.logError("webhook admit failed", externalID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process event"})
	}

	reply, err := h.Bot.Process(ctx, bot.InboundMessage{
		WaUserID:  payload.From,
		Text:      payload.Text,
		MessageID: payload.MessageID,
	})
	if err != nil {
		h.logError("webhook processing failed", externalID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process event"})
	}

	// audit the outbound reply; delivery itself belongs to the relay
	waUserID := payload.From
	if waUserID == "" {
		waUserID = "unknown"
	}
	if err := h.Messages.Create(ctx, &model.Message{
		Provider:  bot.Provider,
		Direction: model.DirectionOut,
		WaUserID:  waUserID,
		Body:      reply,
	}); err != nil {
		h.logError("webhook outbound audit failed", externalID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process event"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":         true,
		"reply":      reply,
		"nextAction": nextActionRelay,
	})
}

func (h *WebhookHandler) logError(msg, externalID string, err error) {
	if h.Logger != nil {
		h.Logger.Error(msg, zap.String("external_id", externalID), zap.Error(err))
	}
}
