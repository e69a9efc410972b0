package auth

import (
	"context"
	"slices"
	"strings"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/response"
	"github.com/Kyz7/limitless/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	userKey = "user"
	aclKey  = "acl"
)

// ACLProvider resolves permission documents for identities.
type ACLProvider interface {
	ForUser(ctx context.Context, user *models.User) (*acl.UserACL, error)
	ForAnonymous(ctx context.Context) (*acl.UserACL, error)
}

// Identify resolves the bearer token, when present, to a user and stores
// the user and their ACL document in the request locals. Requests without
// a token continue as guests.
func Identify(db *gorm.DB, provider ACLProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			doc, err := provider.ForAnonymous(ctx)
			if err != nil {
				return response.InternalError(c, "Failed to load permissions")
			}
			c.Locals(aclKey, doc)
			return c.Next()
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return response.Error(c, fiber.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Invalid token format", nil)
		}

		userID, err := utils.ParseJWT(tokenParts[1])
		if err != nil {
			return response.Error(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token", nil)
		}

		var user models.User
		err = db.WithContext(ctx).
			Preload("Roles").Preload("Blocking").Preload("Following").
			First(&user, userID).Error
		if err != nil {
			return response.Unauthorized(c, "User not found")
		}
		if user.Status != "" && user.Status != "active" {
			return response.Unauthorized(c, "Account is not active")
		}

		doc, err := provider.ForUser(ctx, &user)
		if err != nil {
			return response.InternalError(c, "Failed to load permissions")
		}

		c.Locals("user_id", user.ID)
		c.Locals(userKey, &user)
		c.Locals(aclKey, doc)
		return c.Next()
	}
}

// JWTProtected rejects guests. It must run after Identify.
func JWTProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return response.Unauthorized(c, "Missing authorization token")
		}
		return c.Next()
	}
}

// RoleProtected lets through users holding any of the named roles.
func RoleProtected(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Missing authorization token")
		}

		for _, role := range user.Roles {
			if slices.Contains(allowedRoles, role.Name) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// CurrentUser is nil for guests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// CurrentACL returns the document Identify stored for the request.
func CurrentACL(c *fiber.Ctx) *acl.UserACL {
	doc, _ := c.Locals(aclKey).(*acl.UserACL)
	return doc
}
