// FILE: internal/controller/payment_controller.go
package controller

import (
	"errors"

	"phluowise-billing-be/internal/dto"
	"phluowise-billing-be/internal/pkg/serverutils"
	"phluowise-billing-be/internal/service"
	"phluowise-billing-be/pkg/gateway"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Process(ctx *fiber.Ctx) error
	Checkout(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
	ListMethods(ctx *fiber.Ctx) error
	AddMobileMoneyMethod(ctx *fiber.Ctx) error
	AddCardMethod(ctx *fiber.Ctx) error
	SetDefaultMethod(ctx *fiber.Ctx) error
	RemoveMethod(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.PaymentService
}

func NewPaymentController(service service.PaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")

	// Webhook authenticates via signature, not JWT
	h.Post("/midtrans/notification", c.Webhook)

	// Protected Routes
	h.Post("/process", serverutils.JwtMiddleware, c.Process)
	h.Post("/checkout", serverutils.JwtMiddleware, c.Checkout)

	m := h.Group("/methods", serverutils.JwtMiddleware)
	m.Get("/", c.ListMethods)
	m.Post("/mobile-money", c.AddMobileMoneyMethod)
	m.Post("/card", c.AddCardMethod)
	m.Put("/:id/default", c.SetDefaultMethod)
	m.Delete("/:id", c.RemoveMethod)
}

func (c *paymentController) Process(ctx *fiber.Ctx) error {
	var req dto.PaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.ProcessPayment(ctx.Context(), companyId, req)
	if err != nil {
		return mapPaymentError(ctx, err)
	}
	// Declines are a normal outcome; the Success flag in the body carries it.
	return ctx.JSON(serverutils.SuccessResponse("Payment processed", res))
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.CreateCheckout(ctx.Context(), companyId, req)
	if err != nil {
		return mapPaymentError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout created", res))
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.service.HandleMidtransNotification(ctx.Context(), req); err != nil {
		if errors.Is(err, service.ErrBadWebhookSignature) {
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Invalid signature"))
		}
		return err
	}
	return ctx.JSON(fiber.Map{"status": "ok"})
}

func (c *paymentController) ListMethods(ctx *fiber.Ctx) error {
	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.ListMethods(ctx.Context(), companyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment methods", res))
}

func (c *paymentController) AddMobileMoneyMethod(ctx *fiber.Ctx) error {
	var req dto.AddMobileMoneyMethodRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.AddMobileMoneyMethod(ctx.Context(), companyId, req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Payment method saved", res))
}

func (c *paymentController) AddCardMethod(ctx *fiber.Ctx) error {
	var req dto.AddCardMethodRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.AddCardMethod(ctx.Context(), companyId, req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Payment method saved", res))
}

func (c *paymentController) SetDefaultMethod(ctx *fiber.Ctx) error {
	methodId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid method id"))
	}

	companyId := serverutils.CompanyId(ctx)

	if err := c.service.SetDefaultMethod(ctx.Context(), companyId, methodId); err != nil {
		return mapPaymentError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Default method updated", fiber.Map{}))
}

func (c *paymentController) RemoveMethod(ctx *fiber.Ctx) error {
	methodId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid method id"))
	}

	companyId := serverutils.CompanyId(ctx)

	if err := c.service.RemoveMethod(ctx.Context(), companyId, methodId); err != nil {
		return mapPaymentError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment method removed", fiber.Map{}))
}

func mapPaymentError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gateway.ErrValidation), errors.Is(err, gateway.ErrUnsupportedMethod):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	case errors.Is(err, service.ErrSubscriptionMismatch):
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, err.Error()))
	case errors.Is(err, service.ErrSubscriptionNotFound), errors.Is(err, service.ErrMethodNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	default:
		return err
	}
}
