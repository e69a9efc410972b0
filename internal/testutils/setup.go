package testutils

import (
	"testing"
	"time"

	"github.com/Kyz7/limitless/internal/database"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB opens a migrated in-memory database. The pool is capped to one
// connection since every sqlite :memory: connection is its own database.
func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...), "Failed to migrate test database")
	return db
}

// Fragment is shorthand for a role permission payload.
func Fragment(levels models.ACLFragment) datatypes.JSONType[models.ACLFragment] {
	return datatypes.NewJSONType(levels)
}

func CreateRole(t *testing.T, db *gorm.DB, name, special string, levels models.ACLFragment) *models.Role {
	role := &models.Role{Name: name, SpecialRole: special, Permissions: Fragment(levels)}
	require.NoError(t, db.Create(role).Error)
	return role
}

func CreateCategory(t *testing.T, db *gorm.DB, name string, parent *models.Category) *models.Category {
	c := &models.Category{Name: name}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreatePrivateCategory(t *testing.T, db *gorm.DB) *models.Category {
	c := &models.Category{Name: "Private papers", Special: models.CategoryPrivatePapers}
	require.NoError(t, db.Create(c).Error)
	return c
}

// GrantCategory assigns a category role carrying levels to role in category.
func GrantCategory(t *testing.T, db *gorm.DB, role *models.Role, category *models.Category, levels models.ACLFragment) *models.CategoryRole {
	cr := &models.CategoryRole{
		Name:        role.Name + " in " + category.Name,
		Permissions: Fragment(levels),
	}
	require.NoError(t, db.Create(cr).Error)
	link := &models.RoleCategoryACL{RoleID: role.ID, CategoryID: category.ID, CategoryRoleID: cr.ID}
	require.NoError(t, db.Create(link).Error)
	return cr
}

func CreateUser(t *testing.T, db *gorm.DB, username string, roles ...*models.Role) *models.User {
	user := &models.User{Username: username, Slug: username, Email: username + "@example.com", Status: "active"}
	for _, r := range roles {
		user.Roles = append(user.Roles, *r)
	}
	require.NoError(t, db.Create(user).Error, "Failed to create test user")
	return user
}

// CreatePaper stores a paper with one approved first post by starter
// (nil for a guest) and synchronizes it.
func CreatePaper(t *testing.T, db *gorm.DB, category *models.Category, starter *models.User, title string, postedOn time.Time) *models.Paper {
	paper := &models.Paper{CategoryID: category.ID, StartedOn: postedOn, LastPostOn: postedOn}
	paper.SetTitle(title)
	require.NoError(t, db.Create(paper).Error)

	CreatePost(t, db, paper, starter, postedOn)
	return ReloadPaper(t, db, paper.ID)
}

// CreatePost adds an approved reply and resynchronizes the paper.
func CreatePost(t *testing.T, db *gorm.DB, paper *models.Paper, poster *models.User, postedOn time.Time) *models.Post {
	post := &models.Post{
		CategoryID: paper.CategoryID,
		PaperID:    paper.ID,
		PosterName: "Guest",
		ParsedText: "<p>Lorem ipsum</p>",
		PostedOn:   postedOn,
	}
	if poster != nil {
		post.PosterID = &poster.ID
		post.PosterName = poster.Username
		post.PosterSlug = poster.Slug
	}
	require.NoError(t, db.Create(post).Error)
	Resync(t, db, paper.ID)
	return post
}

// Resync recomputes a paper from its posts and saves it.
func Resync(t *testing.T, db *gorm.DB, paperID uint) {
	var paper models.Paper
	require.NoError(t, db.First(&paper, paperID).Error)
	var posts []models.Post
	require.NoError(t, db.Where("paper_id = ?", paperID).Find(&posts).Error)
	var polls int64
	require.NoError(t, db.Model(&models.Poll{}).Where("paper_id = ?", paperID).Count(&polls).Error)
	paper.Synchronize(posts, polls > 0)
	require.NoError(t, db.Save(&paper).Error)
}

func ReloadPaper(t *testing.T, db *gorm.DB, id uint) *models.Paper {
	var paper models.Paper
	require.NoError(t, db.Preload("Category").First(&paper, id).Error)
	return &paper
}

func ReloadPost(t *testing.T, db *gorm.DB, id uint) *models.Post {
	var post models.Post
	require.NoError(t, db.Preload("Paper").Preload("Paper.Category").First(&post, id).Error)
	return &post
}
