package handlers

import (
	"pazar/internal/services/escrow"
	"pazar/internal/services/payment"
	"pazar/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type EscrowHandler struct {
	escrowService escrow.Service
}

func NewEscrowHandler(escrowService escrow.Service) *EscrowHandler {
	return &EscrowHandler{
		escrowService: escrowService,
	}
}

func (h *EscrowHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ListingID uint `json:"listing_id"`
	}
	if err := c.BodyParser(&input); err != nil || input.ListingID == 0 {
		return utils.BadRequest(c, "listing_id is required")
	}

	tx, err := h.escrowService.Create(c.UserContext(), claims.UserID, input.ListingID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, tx)
}

func (h *EscrowHandler) ListMine(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	views, err := h.escrowService.ListMine(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, views)
}

func (h *EscrowHandler) Get(c *fiber.Ctx) error {
	actor, id, ok := h.target(c)
	if !ok {
		return nil
	}
	view, err := h.escrowService.Get(c.UserContext(), id, actor)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, view)
}

func (h *EscrowHandler) Pay(c *fiber.Ctx) error {
	actor, id, ok := h.target(c)
	if !ok {
		return nil
	}
	var req payment.Request
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	tx, err := h.escrowService.Pay(c.UserContext(), id, actor, req)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

func (h *EscrowHandler) Ship(c *fiber.Ctx) error {
	actor, id, ok := h.target(c)
	if !ok {
		return nil
	}
	var input struct {
		TrackingNumber string `json:"tracking_number"`
	}
	// An empty body ships without a tracking number.
	_ = c.BodyParser(&input)

	tx, err := h.escrowService.Ship(c.UserContext(), id, actor, input.TrackingNumber)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

func (h *EscrowHandler) Confirm(c *fiber.Ctx) error {
	actor, id, ok := h.target(c)
	if !ok {
		return nil
	}
	tx, err := h.escrowService.Confirm(c.UserContext(), id, actor)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

func (h *EscrowHandler) Cancel(c *fiber.Ctx) error {
	actor, id, ok := h.target(c)
	if !ok {
		return nil
	}
	tx, err := h.escrowService.Cancel(c.UserContext(), id, actor)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

// target resolves the actor and the escrow id. On failure it has already
// written the response.
func (h *EscrowHandler) target(c *fiber.Ctx) (uint, uuid.UUID, bool) {
	claims, err := extractUserClaims(c)
	if err != nil {
		_ = utils.Unauthorized(c, "invalid claims")
		return 0, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = utils.BadRequest(c, "invalid transaction id")
		return 0, uuid.Nil, false
	}
	return claims.UserID, id, true
}
