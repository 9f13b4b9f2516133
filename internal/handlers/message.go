package handlers

import (
	"pazar/internal/services/notification"
	"pazar/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 200
)

type MessageHandler struct {
	notificationService *notification.Service
}

func NewMessageHandler(notificationService *notification.Service) *MessageHandler {
	return &MessageHandler{
		notificationService: notificationService,
	}
}

func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	limit := utils.GetLimit(c, defaultInboxLimit, maxInboxLimit)

	msgs, err := h.notificationService.Inbox(c.UserContext(), claims.UserID, limit)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, msgs)
}
