package handlers

import (
	"net/http"

	"waconsole/internal/database"
	"waconsole/internal/email"
	"waconsole/internal/gateway"
	"waconsole/internal/models"
	"waconsole/internal/realtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ListConversationsHandler lists conversations by recent activity
// @Summary List conversations
// @Description Get conversations ordered by last message time, newest first
// @Tags conversations
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} models.ConversationListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/conversations [get]
func ListConversationsHandler(conversationService *database.ConversationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit, offset := pagination(c, 50, 200)

		conversations, err := conversationService.List(c.Request().Context(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}

		resp := models.ConversationListResponse{Success: true}
		resp.Data.Conversations = conversations
		return c.JSON(http.StatusOK, resp)
	}
}

// GetConversationHandler returns one conversation
// @Summary Get conversation
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.ConversationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/conversations/{id} [get]
func GetConversationHandler(conversationService *database.ConversationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		conv, err := conversationService.GetByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.ConversationResponse{Success: true, Data: conv})
	}
}

// StartConversationHandler creates or reuses the active conversation
// @Summary Start conversation
// @Description Create a conversation for a phone number, reusing the contact's active one if present
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body models.StartConversationRequest true "Contact phone and optional name"
// @Success 200 {object} models.ConversationResponse
// @Success 201 {object} models.ConversationResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/conversations [post]
func StartConversationHandler(conversationService *database.ConversationService, publisher realtime.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.StartConversationRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Phone == "" {
			return badRequest(c, "phone is required")
		}

		conv, created, err := conversationService.GetOrCreate(c.Request().Context(), req.Phone, req.Name)
		if err != nil {
			return respondError(c, err)
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
			publisher.Publish(realtime.Event{
				Channel: realtime.ChannelConversations,
				Type:    realtime.EventConversationCreated,
				Data:    conv,
			})
		}

		return c.JSON(status, models.ConversationResponse{Success: true, Data: conv})
	}
}

// MarkConversationReadHandler zeroes the unread counter
// @Summary Mark conversation read
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/conversations/{id}/read [post]
func MarkConversationReadHandler(conversationService *database.ConversationService, publisher realtime.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if err := conversationService.MarkRead(c.Request().Context(), id); err != nil {
			return respondError(c, err)
		}

		publisher.Publish(realtime.Event{
			Channel: realtime.ChannelConversations,
			Type:    realtime.EventConversationUpdated,
			Data:    map[string]interface{}{"id": id, "unread_count": 0},
		})

		return c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Conversation marked as read"})
	}
}

// UpdateConversationStatusHandler transitions a conversation's status
// @Summary Update conversation status
// @Description Move a conversation between active, resolved and escalated
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.ConversationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/conversations/{id}/status [put]
func UpdateConversationStatusHandler(conversationService *database.ConversationService, publisher realtime.Publisher, notifier *email.Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.UpdateStatusRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		conv, err := conversationService.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
		if err != nil {
			return respondError(c, err)
		}

		publisher.Publish(realtime.Event{
			Channel: realtime.ChannelConversations,
			Type:    realtime.EventConversationUpdated,
			Data:    conv,
		})

		// Escalation can ask for a human-handoff email. Only honored when
		// the assignment opted in; a delivery failure never fails the
		// escalation itself.
		if req.Status == models.StatusEscalated && notifier != nil && notifier.Enabled() {
			if conv.NotifyOnHandoff == nil || *conv.NotifyOnHandoff {
				name := conv.Title
				if conv.ContactName != nil && *conv.ContactName != "" {
					name = *conv.ContactName
				}
				phone := ""
				if conv.ContactPhone != nil {
					phone = *conv.ContactPhone
				}
				go func(name, phone, id string) {
					if err := notifier.SendEscalation(name, phone, id); err != nil {
						log.Error().Err(err).Str("conversationID", id).Msg("Failed to send escalation notification")
					}
				}(name, phone, conv.ID)
			}
		}

		return c.JSON(http.StatusOK, models.ConversationResponse{Success: true, Data: conv})
	}
}

// DeleteConversationHandler removes a conversation and its messages
// @Summary Delete conversation
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/conversations/{id} [delete]
func DeleteConversationHandler(conversationService *database.ConversationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := conversationService.Delete(c.Request().Context(), c.Param("id")); err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Conversation deleted"})
	}
}

// ListMessagesHandler pages through a conversation's timeline
// @Summary List messages
// @Description Get one page of a conversation's timeline ordered by sequence number
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Param order query string false "asc (oldest first) or desc (latest first)" default(asc)
// @Success 200 {object} models.MessageListResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/conversations/{id}/messages [get]
func ListMessagesHandler(conversationService *database.ConversationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit, offset := pagination(c, 50, 200)
		order := c.QueryParam("order")

		messages, count, err := conversationService.ListMessages(c.Request().Context(), c.Param("id"), limit, offset, order)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.MessageListResponse{
			Success: true,
			Data:    messages,
			Count:   count,
		})
	}
}

// SendMessageHandler sends an admin message through the gateway
// @Summary Send message
// @Description Send a text message to the conversation's contact via the WhatsApp gateway and record it on the timeline
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body models.SendMessageRequest true "Message content"
// @Success 201 {object} models.SentMessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/conversations/{id}/messages [post]
func SendMessageHandler(conversationService *database.ConversationService, gw *gateway.Client, publisher realtime.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.SendMessageRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Content == "" {
			return badRequest(c, "content is required")
		}

		ctx := c.Request().Context()

		conv, err := conversationService.GetByID(ctx, c.Param("id"))
		if err != nil {
			return respondError(c, err)
		}
		if conv.ContactPhone == nil || *conv.ContactPhone == "" {
			return respondError(c, database.ErrNotFound)
		}

		var providerID *string
		if gw != nil {
			msgID, err := gw.SendMessage(*conv.ContactPhone, req.Content)
			if err != nil {
				return c.JSON(http.StatusBadGateway, models.ErrorResponse{Success: false, Error: err.Error()})
			}
			if msgID != "" {
				providerID = &msgID
			}
		}

		msg, err := conversationService.AppendMessage(ctx, conv.ID, models.AppendMessageInput{
			Content:           req.Content,
			SenderType:        models.SenderAdmin,
			ProviderMessageID: providerID,
		})
		if err != nil {
			return respondError(c, err)
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
				"last_message_at": msg.CreatedAt,
			},
		})

		return c.JSON(http.StatusCreated, models.SentMessageResponse{Success: true, Data: msg})
	}
}
