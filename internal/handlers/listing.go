package handlers

import (
	"pazar/internal/services/listing"
	"pazar/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	listingService listing.Service
}

func NewListingHandler(listingService listing.Service) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input listing.Input
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	l, err := h.listingService.Create(c.UserContext(), claims.UserID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, l)
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, ok := utils.ParamUint(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid listing id")
	}
	l, err := h.listingService.Get(c.UserContext(), id)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, l)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, ok := utils.ParamUint(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid listing id")
	}

	var input listing.Input
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	l, err := h.listingService.Update(c.UserContext(), id, claims.UserID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, l)
}
