package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse mirrors the {"detail": ...} envelope the browser client expects.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ErrorHandler is installed as fiber.Config.ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	case errors.As(err, &validationErrs):
		code = fiber.StatusBadRequest
	}

	return ctx.Status(code).JSON(ErrorResponse{Detail: err.Error()})
}
