package role

import (
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/response"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if !apperr.IsUserFacing(err) {
		h.service.log.Error().Err(err).Str("path", c.Path()).Msg("role request failed")
	}
	return response.FromError(c, err)
}

func (h *Handler) ListRolesHandler(c *fiber.Ctx) error {
	roles, err := h.service.ListRoles(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, roles, "Roles retrieved successfully")
}

func (h *Handler) GetRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	role, err := h.service.GetRole(c.UserContext(), uint(id))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, role, "Role retrieved successfully")
}

func (h *Handler) UpdateRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	var body UpdateRoleInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	role, err := h.service.UpdateRole(c.UserContext(), uint(id), body)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, role, "Role updated successfully")
}

func (h *Handler) ListCategoryRolesHandler(c *fiber.Ctx) error {
	roles, err := h.service.ListCategoryRoles(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, roles, "Category roles retrieved successfully")
}

func (h *Handler) GrantCategoryHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	var body GrantInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	link, err := h.service.Grant(c.UserContext(), uint(id), body)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, link, "Category permissions updated successfully")
}

func (h *Handler) AssignRoleToUserHandler(c *fiber.Ctx) error {
	var body struct {
		UserID uint `json:"user_id"`
		RoleID uint `json:"role_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if err := h.service.AssignRoleToUser(c.UserContext(), body.UserID, body.RoleID); err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, nil, "Role assigned successfully")
}

// Register mounts the role routes behind the given middleware.
func (h *Handler) Register(app fiber.Router, middleware ...fiber.Handler) {
	roles := app.Group("/roles", middleware...)
	roles.Get("/", h.ListRolesHandler)
	roles.Get("/categories", h.ListCategoryRolesHandler)
	roles.Post("/assign", h.AssignRoleToUserHandler)
	roles.Get("/:id", h.GetRoleHandler)
	roles.Put("/:id", h.UpdateRoleHandler)
	roles.Put("/:id/categories", h.GrantCategoryHandler)
}
