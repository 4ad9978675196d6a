package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"waconsole/internal/database"
	"waconsole/internal/gateway"
	"waconsole/internal/models"
	"waconsole/internal/realtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebhookHandler receives gateway callbacks: inbound messages and
// delivery-status updates for messages we sent
// @Summary Gateway webhook
// @Description Receive message and delivery-status callbacks from the WhatsApp gateway
// @Tags gateway
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared webhook secret"
// @Param request body gateway.WebhookEvent true "Gateway event"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/webhook/wasender [post]
func WebhookHandler(conversationService *database.ConversationService, publisher realtime.Publisher, webhookSecret string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if webhookSecret != "" {
			got := c.Request().Header.Get("X-Webhook-Secret")
			if subtle.ConstantTimeCompare([]byte(got), []byte(webhookSecret)) != 1 {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Success: false,
					Error:   "invalid webhook secret",
				})
			}
		}

		var event gateway.WebhookEvent
		if err := c.Bind(&event); err != nil {
			return badRequest(c, "invalid webhook payload")
		}

		switch event.Event {
		case "message.received":
			return handleInboundMessage(c, conversationService, publisher, event)
		case "message.status":
			return handleDeliveryStatus(c, conversationService, publisher, event)
		default:
			// Unknown event types are acknowledged so the gateway stops
			// retrying them.
			log.Warn().Str("event", event.Event).Msg("Ignoring unknown webhook event type")
			return c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Event ignored"})
		}
	}
}

func handleInboundMessage(c echo.Context, conversationService *database.ConversationService, publisher realtime.Publisher, event gateway.WebhookEvent) error {
	if event.From == "" || event.Text == "" {
		return badRequest(c, "from and text are required")
	}

	ctx := c.Request().Context()

	conv, created, err := conversationService.GetOrCreate(ctx, event.From, event.PushName)
	if err != nil {
		return respondError(c, err)
	}

	var providerID *string
	if event.MsgID != "" {
		providerID = &event.MsgID
	}

	msg, err := conversationService.AppendMessage(ctx, conv.ID, models.AppendMessageInput{
		Content:           event.Text,
		SenderType:        models.SenderUser,
		ProviderMessageID: providerID,
	})
	if err != nil {
		return respondError(c, err)
	}

	if created {
		publisher.Publish(realtime.Event{
			Channel: realtime.ChannelConversations,
			Type:    realtime.EventConversationCreated,
			Data:    conv,
		})
	}
	publisher.Publish(realtime.Event{
		Channel: realtime.ConversationChannel(conv.ID),
		Type:    realtime.EventMessageCreated,
		Seq:     msg.Seq,
		Data:    msg,
	})
	publisher.Publish(realtime.Event{
		Channel: realtime.ChannelConversations,
		Type:    realtime.EventConversationUpdated,
		Data: map[string]interface{}{
			"id":              conv.ID,
			"unread_count":    conv.UnreadCount + 1,
			"last_message_at": msg.CreatedAt,
		},
	})

	return c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Message recorded"})
}

func handleDeliveryStatus(c echo.Context, conversationService *database.ConversationService, publisher realtime.Publisher, event gateway.WebhookEvent) error {
	if event.MsgID == "" || event.Status == "" {
		return badRequest(c, "msgId and status are required")
	}

	switch event.Status {
	case models.DeliverySent, models.DeliveryDelivered, models.DeliveryRead, models.DeliveryFailed:
	default:
		return badRequest(c, "unknown delivery status")
	}

	msg, err := conversationService.UpdateDeliveryStatus(c.Request().Context(), event.MsgID, event.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Status callbacks can outlive their message (deleted thread,
			// replayed callback). Acknowledge so the gateway stops retrying.
			log.Warn().Str("msgId", event.MsgID).Str("status", event.Status).Msg("Delivery status for unknown message")
			return c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Message not tracked"})
		}
		return respondError(c, err)
	}

	publisher.Publish(realtime.Event{
		Channel: realtime.ConversationChannel(msg.ConversationID),
		Type:    realtime.EventMessageUpdated,
		Seq:     msg.Seq,
		Data:    msg,
	})

	return c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Status updated"})
}
