// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware verifies the bearer token issued by the auth service and puts
// the tenant identity (company_id) and role claim on the request context.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	companyId, _ := claims["company_id"].(string)
	if companyId == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing company claim"})
	}
	ctx.Locals("company_id", companyId)

	if role, ok := claims["role"].(string); ok {
		ctx.Locals("role", role)
	}
	return ctx.Next()
}

// CompanyId reads the tenant identity set by JwtMiddleware.
func CompanyId(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals("company_id").(string)
	return id
}

// Role reads the role claim set by JwtMiddleware, empty if absent.
func Role(ctx *fiber.Ctx) string {
	role, _ := ctx.Locals("role").(string)
	return role
}
