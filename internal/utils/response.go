package utils

import (
	"errors"
	"log"

	domainerrors "pazar/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// Conflict sends a JSON error response with status 409.
func Conflict(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusConflict, fiber.Map{"error": message})
}

// Error maps a service error to a response. Domain errors carry their code and,
// for state conflicts, the record's current state; anything else is logged
// and reported as a 500.
func Error(c *fiber.Ctx, err error) error {
	var de *domainerrors.DomainError
	if !errors.As(err, &de) {
		log.Printf("component=http msg=\"unhandled error\" method=%s path=%s err=%v", c.Method(), c.Path(), err)
		return InternalError(c, "internal server error")
	}
	body := fiber.Map{"error": de.Message, "code": de.Code}
	if de.CurrentStatus != "" {
		body["current_status"] = de.CurrentStatus
	}
	if de.CurrentBalance != "" {
		body["current_balance"] = de.CurrentBalance
	}
	if de.ResourceID != "" {
		body["resource_id"] = de.ResourceID
	}
	if len(de.Fields) > 0 {
		body["fields"] = de.Fields
	}
	return Respond(c, StatusFor(de.Kind), body)
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind domainerrors.Kind) int {
	switch kind {
	case domainerrors.KindValidation:
		return fiber.StatusBadRequest
	case domainerrors.KindConflict:
		return fiber.StatusConflict
	case domainerrors.KindForbidden:
		return fiber.StatusForbidden
	case domainerrors.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
