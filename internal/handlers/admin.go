package handlers

import (
	"log"

	"pazar/internal/services/ledger"
	"pazar/internal/services/listing"
	"pazar/internal/services/wallet"
	"pazar/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler serves moderation, withdrawal settlement and ledger checks.
// Routes are mounted behind AdminAuthMiddleware.
type AdminHandler struct {
	listingService listing.Service
	walletService  wallet.Service
	ledgerService  ledger.Service
}

func NewAdminHandler(listingService listing.Service, walletService wallet.Service, ledgerService ledger.Service) *AdminHandler {
	return &AdminHandler{
		listingService: listingService,
		walletService:  walletService,
		ledgerService:  ledgerService,
	}
}

func (h *AdminHandler) ApproveListing(c *fiber.Ctx) error {
	id, ok := utils.ParamUint(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid listing id")
	}
	l, err := h.listingService.Approve(c.UserContext(), id)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, l)
}

func (h *AdminHandler) RejectListing(c *fiber.Ctx) error {
	id, ok := utils.ParamUint(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid listing id")
	}
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&input)

	l, err := h.listingService.Reject(c.UserContext(), id, input.Reason)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, l)
}

func (h *AdminHandler) BanUser(c *fiber.Ctx) error {
	return h.setBanned(c, true)
}

func (h *AdminHandler) UnbanUser(c *fiber.Ctx) error {
	return h.setBanned(c, false)
}

func (h *AdminHandler) setBanned(c *fiber.Ctx, banned bool) error {
	id, ok := utils.ParamUint(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid user id")
	}
	if err := h.listingService.SetUserBanned(c.UserContext(), id, banned); err != nil {
		return utils.Error(c, err)
	}
	log.Printf("component=admin msg=\"user ban updated\" user_id=%d banned=%t", id, banned)
	return utils.Success(c, fiber.Map{"user_id": id, "banned": banned})
}

func (h *AdminHandler) SettleWithdrawal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "invalid withdrawal id")
	}
	tx, err := h.walletService.SettleWithdrawal(c.UserContext(), id)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

func (h *AdminHandler) CancelWithdrawal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "invalid withdrawal id")
	}
	tx, err := h.walletService.CancelWithdrawal(c.UserContext(), id)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

// VerifyBalance compares a user's stored balance with the ledger. Pass
// ?repair=true to overwrite a drifted balance.
func (h *AdminHandler) VerifyBalance(c *fiber.Ctx) error {
	id, ok := utils.ParamUint(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid user id")
	}
	check, err := h.ledgerService.Recompute(c.UserContext(), id, c.QueryBool("repair"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, check)
}

func (h *AdminHandler) ReconcileAll(c *fiber.Ctx) error {
	report, err := h.ledgerService.ReconcileAll(c.UserContext(), c.QueryBool("repair"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, report)
}
