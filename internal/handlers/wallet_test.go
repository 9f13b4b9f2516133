package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"pazar/internal/models"
	"pazar/internal/repositories/memory"
	"pazar/internal/services/ledger"
	"pazar/internal/services/payment"
	"pazar/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	balances map[uint]decimal.Decimal
	hits     int
}

func (c *mapCache) GetBalance(_ context.Context, userID uint) (decimal.Decimal, bool, error) {
	b, ok := c.balances[userID]
	if ok {
		c.hits++
	}
	return b, ok, nil
}

func (c *mapCache) SetBalance(_ context.Context, userID uint, balance decimal.Decimal) error {
	c.balances[userID] = balance
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, userIDs ...uint) error {
	for _, id := range userIDs {
		delete(c.balances, id)
	}
	return nil
}

func TestWalletHandler_GetBalance(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := &models.User{Email: "user@example.com", Name: "User"}
	require.NoError(t, store.CreateUser(ctx, user))

	balances := &mapCache{balances: map[uint]decimal.Decimal{}}
	svc := wallet.NewService(store, payment.NewService(nil, nil, "TRY"), balances, wallet.WalletConfig{Currency: "TRY"}, nil)
	_, err := svc.Deposit(ctx, user.ID, decimal.NewFromInt(75))
	require.NoError(t, err)

	h := NewWalletHandler(svc, ledger.NewService(store, nil))
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id, err := strconv.ParseUint(c.Get("X-User"), 10, 64); err == nil {
			c.Locals("claims", &models.UserClaims{UserID: uint(id), Role: models.RoleUser})
		}
		return c.Next()
	})
	app.Get("/wallet/balance", h.GetBalance)

	get := func(user string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/wallet/balance", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	id := strconv.FormatUint(uint64(user.ID), 10)
	resp := get(id)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Zero(t, balances.hits)
	assert.True(t, balances.balances[user.ID].Equal(decimal.NewFromInt(75)))

	resp = get(id)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 1, balances.hits)

	resp = get("")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = get("999")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
