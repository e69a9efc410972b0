package auth_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/auth"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/response"
	"github.com/Kyz7/limitless/internal/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProvider struct {
	err error
}

func (p fakeProvider) ForUser(_ context.Context, user *models.User) (*acl.UserACL, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &acl.UserACL{UserID: user.ID, IsAuthenticated: true}, nil
}

func (p fakeProvider) ForAnonymous(context.Context) (*acl.UserACL, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &acl.UserACL{IsAnonymous: true}, nil
}

func setupApp(t *testing.T, provider auth.ACLProvider) (*fiber.App, *gorm.DB) {
	db := testutils.TestDB(t)
	app := fiber.New()
	app.Use(auth.Identify(db, provider))

	app.Get("/whoami", func(c *fiber.Ctx) error {
		username := ""
		if user := auth.CurrentUser(c); user != nil {
			username = user.Username
		}
		return response.Success(c, fiber.Map{"username": username, "acl": auth.CurrentACL(c)}, "")
	})
	app.Post("/protected", auth.JWTProtected(), func(c *fiber.Ctx) error {
		return response.Success(c, nil, "ok")
	})
	app.Get("/admin", auth.RoleProtected("admin"), func(c *fiber.Ctx) error {
		return response.Success(c, nil, "ok")
	})
	return app, db
}

func TestIdentify(t *testing.T) {
	app, db := setupApp(t, fakeProvider{})
	user := testutils.CreateUser(t, db, "reader")

	t.Run("Success - guests continue anonymously", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/whoami", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		result := testutils.AssertSuccess(t, resp)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "", data["username"])
		assert.Equal(t, true, data["acl"].(map[string]interface{})["is_anonymous"])
	})

	t.Run("Success - token resolves the user", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/whoami", nil, testutils.GetAuthToken(t, user.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		result := testutils.AssertSuccess(t, resp)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "reader", data["username"])
		assert.Equal(t, float64(user.ID), data["acl"].(map[string]interface{})["user_id"])
	})

	t.Run("Error - malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("Error - unknown user", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/whoami", nil, testutils.GetAuthToken(t, 9999))
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)

		testutils.AssertError(t, resp, "UNAUTHORIZED")
	})

	t.Run("Error - inactive account", func(t *testing.T) {
		banned := testutils.CreateUser(t, db, "banned")
		require.NoError(t, db.Model(banned).Update("status", "banned").Error)

		resp, err := testutils.MakeRequest(app, "GET", "/whoami", nil, testutils.GetAuthToken(t, banned.ID))
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)

		testutils.AssertError(t, resp, "UNAUTHORIZED")
	})

	t.Run("Error - permissions can't be loaded", func(t *testing.T) {
		broken, _ := setupApp(t, fakeProvider{err: errors.New("cache down")})

		resp, err := testutils.MakeRequest(broken, "GET", "/whoami", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 500, resp.Code)

		testutils.AssertError(t, resp, "INTERNAL_ERROR")
	})
}

func TestJWTProtected(t *testing.T) {
	app, db := setupApp(t, fakeProvider{})
	user := testutils.CreateUser(t, db, "writer")

	t.Run("Success - signed in users pass", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/protected", nil, testutils.GetAuthToken(t, user.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Error - guests are rejected", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/protected", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)

		testutils.AssertError(t, resp, "UNAUTHORIZED")
	})
}

func TestRoleProtected(t *testing.T) {
	app, db := setupApp(t, fakeProvider{})
	admin := &models.Role{Name: "admin"}
	require.NoError(t, db.Create(admin).Error)

	t.Run("Success - role holders pass", func(t *testing.T) {
		user := testutils.CreateUser(t, db, "boss", admin)

		resp, err := testutils.MakeRequest(app, "GET", "/admin", nil, testutils.GetAuthToken(t, user.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Error - other users are forbidden", func(t *testing.T) {
		user := testutils.CreateUser(t, db, "peon")

		resp, err := testutils.MakeRequest(app, "GET", "/admin", nil, testutils.GetAuthToken(t, user.ID))
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})
}
