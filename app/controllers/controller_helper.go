package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Error codes of the JSON error envelope.
const (
	codeBadRequest      = "bad_request"
	codeValidation      = "validation_error"
	codeUnauthorized    = "unauthorized"
	codeNotFound        = "not_found"
	codeConflict        = "conflict"
	codeInternal        = "internal_server_error"
	codeGatewayRejected = "gateway_rejected"
	codeGatewayError    = "gateway_error"
	codeGatewayTimeout  = "gateway_timeout"
)

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

func validationError(c *fiber.Ctx, message string, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   codeValidation,
		"message": message,
		"fields":  fields,
	})
}

// paramID parses the :id route parameter.
func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// modelFields flattens validator errors of a model into field → tag.
func modelFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(fe.Field())] = fe.Tag()
	}
	return fields
}

// jsonName maps a Go field name to the camelCase key used on the wire.
func jsonName(field string) string {
	return strings.ReplaceAll(lowerFirst(field), "URL", "Url")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
