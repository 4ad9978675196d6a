package handlers

import (
	"strings"

	"waconsole/internal/realtime"

	"github.com/labstack/echo/v4"
)

// StreamHandler opens an SSE stream for the requested channels
// @Summary Realtime event stream
// @Description Server-sent events stream. Subscribe with ?channels=conversations,conversation:<id>; omitted means the global conversations channel.
// @Tags realtime
// @Produce text/event-stream
// @Param channels query string false "Comma-separated channel names"
// @Success 200 {string} string "event stream"
// @Router /api/realtime/stream [get]
func StreamHandler(hub *realtime.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		client := hub.NewClient()

		channels := c.QueryParam("channels")
		if channels == "" {
			channels = realtime.ChannelConversations
		}
		for _, ch := range strings.Split(channels, ",") {
			hub.Subscribe(client, ch)
		}

		defer hub.CloseClient(client)

		hub.ServeSSE(c.Response().Writer, c.Request(), client)
		return nil
	}
}
