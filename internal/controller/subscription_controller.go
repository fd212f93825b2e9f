// FILE: internal/controller/subscription_controller.go
package controller

import (
	"phluowise-billing-be/internal/dto"
	"phluowise-billing-be/internal/pkg/serverutils"
	"phluowise-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	GetStatus(ctx *fiber.Ctx) error
	Validate(ctx *fiber.Ctx) error
	GetTransactions(ctx *fiber.Ctx) error
	GetStats(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.SubscriptionService
}

func NewSubscriptionController(service service.SubscriptionService) ISubscriptionController {
	return &subscriptionController{service: service}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/subscription", serverutils.JwtMiddleware)
	h.Get("/status", c.GetStatus)
	h.Get("/validate", c.Validate)
	h.Get("/transactions", c.GetTransactions)
	h.Get("/stats", c.GetStats)
}

func (c *subscriptionController) GetStatus(ctx *fiber.Ctx) error {
	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.GetStatus(ctx.Context(), companyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", res))
}

func (c *subscriptionController) Validate(ctx *fiber.Ctx) error {
	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.Validate(ctx.Context(), companyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription validated", res))
}

func (c *subscriptionController) GetTransactions(ctx *fiber.Ctx) error {
	var query dto.TransactionListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query parameters"))
	}

	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.ListTransactions(ctx.Context(), companyId, query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment history", res))
}

// GetStats serves the support dashboard's debt summary.
func (c *subscriptionController) GetStats(ctx *fiber.Ctx) error {
	if serverutils.Role(ctx) != service.RoleSupport {
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Support role required"))
	}

	res, err := c.service.GetStats(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing stats", res))
}
