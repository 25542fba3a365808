package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorMapping binds a sentinel error to an HTTP status. Message, when
// set, replaces the error text in the response.
type ErrorMapping struct {
	Err     error
	Status  int
	Message string
}

// ErrorHandlerMiddleware recovers panics and turns handler errors into
// ErrorBody responses. Errors matching a mapping (errors.Is) get its status
// and their own message.
func ErrorHandlerMiddleware(mappings ...ErrorMapping) fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERROR] panic on %s %s: %v", ctx.Method(), ctx.Path(), r)
				err = ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
			}
		}()

		err = ctx.Next()
		if err == nil {
			return nil
		}
		return writeError(ctx, err, mappings)
	}
}

func writeError(ctx *fiber.Ctx, err error, mappings []ErrorMapping) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		body := ErrorResponse(fiber.StatusBadRequest, "Validation failed")
		body.Errors = verr.Fields
		return ctx.Status(fiber.StatusBadRequest).JSON(body)
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Code, ferr.Message))
	}

	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			return ctx.Status(m.Status).JSON(ErrorResponse(m.Status, msg))
		}
	}

	log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
}

// ErrorHandler is the fiber.Config fallback for errors raised outside the
// middleware chain, such as routing and body-limit errors.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	return writeError(ctx, err, nil)
}
