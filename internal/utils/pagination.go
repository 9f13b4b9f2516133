package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetLimit extracts the limit query parameter. It falls back to defaultLimit
// when the value is missing or invalid and caps it at maxLimit.
func GetLimit(c *fiber.Ctx, defaultLimit, maxLimit int) int {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// ParamUint reads a positive integer path parameter.
func ParamUint(c *fiber.Ctx, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
