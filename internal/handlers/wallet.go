package handlers

import (
	"pazar/internal/models"
	"pazar/internal/services/ledger"
	"pazar/internal/services/payment"
	"pazar/internal/services/wallet"
	"pazar/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	walletService wallet.Service
	ledgerService ledger.Service
}

func NewWalletHandler(walletService wallet.Service, ledgerService ledger.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		ledgerService: ledgerService,
	}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	w, err := h.walletService.GetWallet(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"wallet":       w,
		"current_user": fiber.Map{"id": claims.UserID},
	})
}

// GetBalance returns only the balance, served from the balance cache when warm.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	balance, err := h.walletService.GetBalance(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"user_id": claims.UserID,
		"balance": balance,
	})
}

func (h *WalletHandler) TopUpWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	balance, err := h.walletService.Deposit(c.UserContext(), claims.UserID, input.Amount)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"balance": balance})
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount decimal.Decimal `json:"amount"`
		IBAN   string          `json:"iban"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	balance, err := h.walletService.Withdraw(c.UserContext(), claims.UserID, input.Amount, input.IBAN)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"balance": balance})
}

func (h *WalletHandler) ListCards(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	cards, err := h.walletService.ListCards(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, cards)
}

func (h *WalletHandler) AddCard(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input payment.CardInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	cards, err := h.walletService.AddCard(c.UserContext(), claims.UserID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, cards)
}

func (h *WalletHandler) RemoveCard(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	cards, err := h.walletService.RemoveCard(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, cards)
}

// VerifyBalance recomputes the caller's balance from the ledger without repairing it.
func (h *WalletHandler) VerifyBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	check, err := h.ledgerService.Recompute(c.UserContext(), claims.UserID, false)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, check)
}
