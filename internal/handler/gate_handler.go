package handler

import (
	"os"

	"phluowise-billing-be/internal/pkg/logger"
	internalWS "phluowise-billing-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// GateHandler upgrades dashboard connections onto the gate push channel.
type GateHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewGateHandler(hub *internalWS.Hub, log logger.ILogger) *GateHandler {
	return &GateHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *GateHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/gate", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *GateHandler) ServeWs(c *fiber.Ctx) error {
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		h.logger.Warn("GateHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing company_id"})
	}

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(c *websocket.Conn) {
			h.logger.Info("GateHandler", "Starting WebSocket session", map[string]interface{}{"company_id": companyID})
			internalWS.ServeWs(h.hub, c, companyID)
			h.logger.Info("GateHandler", "WebSocket session ended", map[string]interface{}{"company_id": companyID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
