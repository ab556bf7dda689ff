package server

import (
	"log/slog"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade admits authenticated websocket upgrades. Browsers that cannot
// send headers on the handshake may pass the token as ?token=.
func (s *Server) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		userID := middleware.CurrentUserID(c)
		if userID == 0 {
			if raw := c.Query("token"); raw != "" {
				claims, err := middleware.ParseToken(s.config.JWTSecret, raw)
				if err == nil && !middleware.IsRevoked(c.UserContext(), s.redis, claims.JTI) {
					userID = claims.UserID
					c.Locals("userID", userID)
				}
			}
		}
		if userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}
		return c.Next()
	}
}

// NotificationsWebSocket streams the caller's follow, comment and post events.
// @Summary Notification stream
// @Description Websocket. Each text frame is an event {type, payload, created_at}.
// @Tags realtime
// @Param token query string false "JWT when no header or cookie can be sent"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Router /ws/notifications [get]
func (s *Server) NotificationsWebSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("notification socket rejected",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		middleware.Logger.Debug("notification socket connected", slog.Uint64("user_id", uint64(userID)))

		written := make(chan struct{})
		go func() {
			defer close(written)
			client.WritePump()
		}()

		// ReadPump unregisters the client, so no broadcast can reach Send once it returns.
		client.ReadPump()
		close(client.Send)
		<-written
	})
}
