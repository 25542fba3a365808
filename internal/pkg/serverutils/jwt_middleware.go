package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// NewJwtMiddleware verifies HS256 bearer tokens signed with secret and
// exposes the "sub" claim as ctx.Locals("subject"). Tokens are issued
// elsewhere.
func NewJwtMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || len(key) == 0 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		if sub, err := token.Claims.GetSubject(); err == nil {
			ctx.Locals("subject", sub)
		}
		return ctx.Next()
	}
}
