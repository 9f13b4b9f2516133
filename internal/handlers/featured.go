package handlers

import (
	"pazar/internal/services/payment"
	"pazar/internal/services/promotion"
	"pazar/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FeaturedHandler struct {
	promotionService promotion.Service
}

func NewFeaturedHandler(promotionService promotion.Service) *FeaturedHandler {
	return &FeaturedHandler{
		promotionService: promotionService,
	}
}

// Prices lists the featured durations and their prices. Public.
func (h *FeaturedHandler) Prices(c *fiber.Ctx) error {
	return utils.Success(c, h.promotionService.Prices())
}

// Request opens a pending promotion for the listing in the path.
func (h *FeaturedHandler) Request(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	listingID, ok := utils.ParamUint(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid listing id")
	}

	var input struct {
		Days int `json:"days"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	p, err := h.promotionService.Request(c.UserContext(), listingID, claims.UserID, input.Days)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, p)
}

func (h *FeaturedHandler) Complete(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "invalid promotion id")
	}

	var req payment.Request
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	p, err := h.promotionService.Complete(c.UserContext(), id, claims.UserID, req)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, p)
}
