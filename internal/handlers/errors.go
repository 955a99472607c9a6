package handlers

import (
	"errors"
	"log"

	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// respondValidation writes a 400 listing every failed field and reports
// whether err was a validation error at all.
func respondValidation(c *fiber.Ctx, err error) (bool, error) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return false, nil
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  verr.Map(),
	})
}

func respondBadBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

func respondInternal(c *fiber.Ctx, message string, err error) error {
	log.Printf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// ErrorHandler renders errors that escape a handler, including unmatched
// routes and recovered panics, as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
