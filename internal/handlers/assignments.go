package handlers

import (
	"net/http"

	"waconsole/internal/assistant"
	"waconsole/internal/database"
	"waconsole/internal/models"
	"waconsole/internal/realtime"

	"github.com/labstack/echo/v4"
)

// ListAssignmentsHandler lists conversations with an assistant attached
// @Summary List assistant assignments
// @Tags ai-management
// @Produce json
// @Success 200 {object} models.AssignmentListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/ai-management/assignments [get]
func ListAssignmentsHandler(assignmentService *database.AssignmentService) echo.HandlerFunc {
	return func(c echo.Context) error {
		assignments, err := assignmentService.List(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.AssignmentListResponse{Success: true, Data: assignments})
	}
}

// GetAssignmentHandler returns the assignment for one conversation
// @Summary Get assignment
// @Tags ai-management
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.AssignmentResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/ai-management/assignments/{id} [get]
func GetAssignmentHandler(assignmentService *database.AssignmentService) echo.HandlerFunc {
	return func(c echo.Context) error {
		assignment, err := assignmentService.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.AssignmentResponse{Success: true, Data: assignment})
	}
}

// AssignAssistantHandler assigns a hosted assistant to a conversation
// @Summary Assign assistant
// @Description Verify the assistant exists on the platform, then snapshot its config onto the conversation with the given overrides
// @Tags ai-management
// @Accept json
// @Produce json
// @Param request body models.AssignmentRequest true "Assignment with overrides"
// @Success 200 {object} models.AssignmentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/ai-management/assignments [put]
func AssignAssistantHandler(assignmentService *database.AssignmentService, assistants *assistant.Client, publisher realtime.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.AssignmentRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if err := req.Validate(); err != nil {
			return badRequest(c, err.Error())
		}

		ctx := c.Request().Context()

		// The assistant must exist on the platform right now; a stale id
		// fails here instead of being snapshotted.
		info, err := assistants.Get(ctx, req.AssistantID)
		if err != nil {
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Success: false, Error: err.Error()})
		}

		assignment, err := assignmentService.Assign(ctx, req, info)
		if err != nil {
			return respondError(c, err)
		}

		publisher.Publish(realtime.Event{
			Channel: realtime.ChannelConversations,
			Type:    realtime.EventConversationUpdated,
			Data: map[string]interface{}{
				"id":           assignment.ConversationID,
				"assistant_id": assignment.AssistantID,
				"ai_enabled":   assignment.AIEnabled,
			},
		})

		return c.JSON(http.StatusOK, models.AssignmentResponse{Success: true, Data: assignment})
	}
}

// UnassignAssistantHandler removes a conversation's assistant
// @Summary Unassign assistant
// @Description Clear the assistant snapshot and overrides and disable AI for the conversation
// @Tags ai-management
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/ai-management/assignments/{id} [delete]
func UnassignAssistantHandler(assignmentService *database.AssignmentService, publisher realtime.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if err := assignmentService.Unassign(c.Request().Context(), id); err != nil {
			return respondError(c, err)
		}

		publisher.Publish(realtime.Event{
			Channel: realtime.ChannelConversations,
			Type:    realtime.EventConversationUpdated,
			Data: map[string]interface{}{
				"id":           id,
				"assistant_id": nil,
				"ai_enabled":   false,
			},
		})

		return c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Assistant unassigned"})
	}
}

// ListAssistantsHandler returns the hosted assistant catalog
// @Summary List hosted assistants
// @Description Get the assistant catalog from the platform, cached briefly server-side
// @Tags ai-management
// @Produce json
// @Success 200 {object} models.AssistantListResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/ai-management/bb-assistants [get]
func ListAssistantsHandler(assistants *assistant.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		catalog, err := assistants.List(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Success: false, Error: err.Error()})
		}

		return c.JSON(http.StatusOK, models.AssistantListResponse{Success: true, Assistants: catalog})
	}
}
