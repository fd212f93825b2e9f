// FILE: internal/pkg/serverutils/response.go
package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type SuccessBody[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type ErrorBody struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func SuccessResponse[T any](message string, data T) SuccessBody[T] {
	return SuccessBody[T]{Success: true, Message: message, Data: data}
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{Success: false, Code: code, Message: message}
}

var validate = validator.New()

// ValidateRequest checks the `validate` struct tags on a request DTO and
// returns a 400 fiber error describing the first failing field.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				"validation failed on field '"+verrs[0].Field()+"' ("+verrs[0].Tag()+")")
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// ErrorHandlerMiddleware converts errors escaping the handlers into the JSON
// error envelope, keeping fiber.Error status codes intact.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
