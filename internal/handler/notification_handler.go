package handler

import (
	"os"
	"time"

	"deep-research-be/internal/pkg/logger"
	"deep-research-be/internal/pkg/serverutils"
	"deep-research-be/internal/service"
	internalWS "deep-research-be/internal/websocket"
	"deep-research-be/pkg/events"
	pktNats "deep-research-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NotificationHandler exposes the notification feed and the websocket
// endpoint that carries notifications and mirrored research progress.
type NotificationHandler struct {
	service   *service.NotificationService
	publisher *pktNats.Publisher
	hub       *internalWS.Hub
	logger    logger.ILogger
}

func NewNotificationHandler(service *service.NotificationService, pub *pktNats.Publisher, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service:   service,
		publisher: pub,
		hub:       hub,
		logger:    log,
	}
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notif := router.Group("/notifications")
	notif.Use(serverutils.JwtMiddleware)
	notif.Get("/", h.List)
	notif.Get("/unread-count", h.UnreadCount)
	notif.Patch("/read-all", h.MarkAllRead)
	notif.Patch("/:id/read", h.MarkRead)
	notif.Post("/broadcast", h.Broadcast)

	// Websocket upgrade authenticates inline (browsers cannot set headers
	// on the upgrade request), so it sits outside the JWT middleware.
	router.Get("/ws", h.ServeWs)
}

// ServeWs authenticates the handshake and hands the connection to the hub.
// The token comes from the "token" query param, or a Bearer header for
// non-browser clients.
func (h *NotificationHandler) ServeWs(ctx *fiber.Ctx) error {
	userID, err := h.wsUserID(ctx)
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "WebSocket session started", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(ctx)
}

func (h *NotificationHandler) wsUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		if auth := ctx.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
			tokenStr = auth[7:]
		}
	}
	if tokenStr == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("NotificationHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Token missing user_id")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user id in token")
	}
	return userID, nil
}

func (h *NotificationHandler) List(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", 20)
	if limit < 1 {
		limit = 20
	}
	offset := ctx.QueryInt("offset", 0)

	notifications, total, err := h.service.GetNotifications(ctx.UserContext(), userID, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get notifications", fiber.Map{
		"items": notifications,
		"total": total,
		"page":  offset/limit + 1,
		"limit": limit,
	}))
}

func (h *NotificationHandler) UnreadCount(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	count, err := h.service.GetUnreadCount(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get unread count", fiber.Map{"count": count}))
}

func (h *NotificationHandler) MarkRead(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid notification id")
	}

	if err := h.service.MarkAsRead(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Notification marked as read", nil))
}

func (h *NotificationHandler) MarkAllRead(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	if err := h.service.MarkAllAsRead(ctx.UserContext(), userID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("All notifications marked as read", nil))
}

// Broadcast queues a system-wide announcement on the event bus.
func (h *NotificationHandler) Broadcast(ctx *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Title == "" || req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Title and Message are required")
	}

	if h.publisher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Event bus is not configured")
	}

	evt := events.BaseEvent{
		Type: "SYSTEM_BROADCAST",
		Data: map[string]interface{}{
			"title":   req.Title,
			"message": req.Message,
		},
		OccurredAt: time.Now(),
	}
	if err := h.publisher.Publish(ctx.UserContext(), evt); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Broadcast queued", nil))
}
