// FILE: internal/controller/access_controller.go
package controller

import (
	"errors"

	"phluowise-billing-be/internal/dto"
	"phluowise-billing-be/internal/pkg/serverutils"
	"phluowise-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAccessController interface {
	RegisterRoutes(r fiber.Router)
	Check(ctx *fiber.Ctx) error
	Override(ctx *fiber.Ctx) error
	Announce(ctx *fiber.Ctx) error
}

type accessController struct {
	service service.AccessService
}

func NewAccessController(service service.AccessService) IAccessController {
	return &accessController{service: service}
}

func (c *accessController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/access", serverutils.JwtMiddleware)
	h.Get("/check", c.Check)
	h.Post("/override", c.Override)
	h.Post("/announce", c.Announce)
}

// Check is hit by the dashboard on every page load; the decision drives the
// blocking overlay on the client.
func (c *accessController) Check(ctx *fiber.Ctx) error {
	companyId := serverutils.CompanyId(ctx)

	res, err := c.service.Check(ctx.Context(), companyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Access decision", res))
}

func (c *accessController) Override(ctx *fiber.Ctx) error {
	var req dto.OverrideRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	companyId := serverutils.CompanyId(ctx)
	role := serverutils.Role(ctx)

	res, err := c.service.Override(ctx.Context(), companyId, role, req)
	if err != nil {
		if errors.Is(err, service.ErrOverrideDenied) {
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Override denied"))
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Override granted", res))
}

// Announce lets support staff push a maintenance notice to every open dashboard.
func (c *accessController) Announce(ctx *fiber.Ctx) error {
	var req dto.AnnounceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	role := serverutils.Role(ctx)

	if err := c.service.Announce(ctx.Context(), role, req); err != nil {
		if errors.Is(err, service.ErrOverrideDenied) {
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Support role required"))
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Maintenance notice broadcast", fiber.Map{}))
}
