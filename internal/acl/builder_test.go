package acl

import (
	"testing"

	"github.com/Kyz7/limitless/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func role(id uint, f models.ACLFragment) models.Role {
	return models.Role{ID: id, Permissions: datatypes.NewJSONType(f)}
}

func catRole(f models.ACLFragment) models.CategoryRole {
	return models.CategoryRole{Permissions: datatypes.NewJSONType(f)}
}

func uintPtr(v uint) *uint { return &v }

func sampleCategories() []models.Category {
	return []models.Category{
		{ID: 1, Special: models.CategoryRoot},
		{ID: 2, ParentID: uintPtr(1), Name: "General"},
		{ID: 3, ParentID: uintPtr(2), Name: "Child"},
		{ID: 4, ParentID: uintPtr(1), Name: "Staff", RequireRepliesApproval: true},
		{ID: 5, Special: models.CategoryPrivatePapers},
	}
}

func TestBuild(t *testing.T) {
	browse := models.ACLFragment{KeyCanSee: 1, KeyCanBrowse: 1, KeyCanStartPapers: 1, KeyCanReplyPapers: 1, KeyPaperEditTime: 30}

	t.Run("Success - global defaults", func(t *testing.T) {
		doc := Build(BuildInput{Authenticated: true})
		assert.Equal(t, 3, doc.MaxPrivatePaperParticipants)
		assert.Equal(t, 1, doc.CanBeBlocked)
		assert.Zero(t, doc.CanUsePrivatePapers)
		assert.Empty(t, doc.Categories)
	})

	t.Run("Success - global fold", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Roles: []models.Role{
				role(1, models.ACLFragment{KeyMaxPrivatePaperParticipants: 5, KeyCanBeBlocked: 1}),
				role(2, models.ACLFragment{KeyMaxPrivatePaperParticipants: 0, KeyCanBeBlocked: 0, KeyCanOmitFloodProtection: 1}),
			},
		})
		assert.Zero(t, doc.MaxPrivatePaperParticipants)
		assert.Zero(t, doc.CanBeBlocked)
		assert.Equal(t, 1, doc.CanOmitFloodProtection)
	})

	t.Run("Success - category tree", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Categories:    sampleCategories(),
			CategoryRoles: map[uint][]models.CategoryRole{
				2: {catRole(browse), catRole(models.ACLFragment{KeyPaperEditTime: 0, KeyCanApproveContent: 1})},
				3: {catRole(browse)},
				4: {catRole(models.ACLFragment{KeyCanSee: 1})},
			},
		})

		require.True(t, doc.HasCategory(2))
		assert.Equal(t, 1, doc.Category(2).CanStartPapers)
		assert.Zero(t, doc.Category(2).PaperEditTime)
		assert.Equal(t, 30, doc.Category(3).PaperEditTime)
		assert.True(t, doc.CanApproveIn(2))
		assert.False(t, doc.CanApproveIn(3))

		assert.ElementsMatch(t, []uint{2, 3, 4}, doc.VisibleCategories)
		assert.ElementsMatch(t, []uint{2, 3}, doc.BrowseableCategories)
		assert.False(t, doc.HasCategory(4))
		assert.Equal(t, CategoryACL{}, doc.Category(4))
		assert.Equal(t, CategoryACL{}, doc.Category(99))
	})

	t.Run("Success - edit time limits survive the fold", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Categories:    sampleCategories(),
			CategoryRoles: map[uint][]models.CategoryRole{
				2: {catRole(models.ACLFragment{KeyCanSee: 1, KeyCanBrowse: 1, KeyPaperEditTime: 30, KeyPostEditTime: 15})},
				3: {
					catRole(models.ACLFragment{KeyCanSee: 1, KeyCanBrowse: 1, KeyPaperEditTime: 30}),
					catRole(models.ACLFragment{KeyCanSee: 1, KeyPaperEditTime: 45}),
				},
			},
		})
		assert.Equal(t, 30, doc.Category(2).PaperEditTime)
		assert.Equal(t, 15, doc.Category(2).PostEditTime)
		assert.Equal(t, 45, doc.Category(3).PaperEditTime)
		assert.Zero(t, doc.Category(3).PostEditTime)
	})

	t.Run("Success - a single participant limit is kept", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Roles:         []models.Role{role(1, models.ACLFragment{KeyMaxPrivatePaperParticipants: 2})},
		})
		assert.Equal(t, 2, doc.MaxPrivatePaperParticipants)
	})

	t.Run("Success - hidden parent hides children", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Categories:    sampleCategories(),
			CategoryRoles: map[uint][]models.CategoryRole{3: {catRole(browse)}},
		})
		assert.False(t, doc.HasCategory(3))
		assert.Empty(t, doc.VisibleCategories)
	})

	t.Run("Success - approval requirement", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Categories:    sampleCategories(),
			CategoryRoles: map[uint][]models.CategoryRole{4: {catRole(browse)}},
		})
		assert.Equal(t, 1, doc.Category(4).RequireRepliesApproval)

		doc = Build(BuildInput{
			Authenticated: true,
			Categories:    sampleCategories(),
			CategoryRoles: map[uint][]models.CategoryRole{
				4: {catRole(browse), catRole(models.ACLFragment{KeyCanApproveContent: 1})},
			},
		})
		assert.Zero(t, doc.Category(4).RequireRepliesApproval)
	})

	t.Run("Success - anonymous loses authenticated levels", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: false,
			Roles:         []models.Role{role(1, models.ACLFragment{KeyCanUsePrivatePapers: 1})},
			Categories:    sampleCategories(),
			CategoryRoles: map[uint][]models.CategoryRole{
				2: {catRole(browse), catRole(models.ACLFragment{KeyCanHidePapers: 2, KeyCanSeeAllPapers: 1})},
			},
		})
		assert.True(t, doc.IsAnonymous)
		assert.Equal(t, 1, doc.Category(2).CanSeeAllPapers)
		assert.Zero(t, doc.Category(2).CanStartPapers)
		assert.Zero(t, doc.Category(2).CanHidePapers)
		assert.Zero(t, doc.CanUsePrivatePapers)
		assert.False(t, doc.HasCategory(5))
	})

	t.Run("Success - private papers for members", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Roles:         []models.Role{role(1, models.ACLFragment{KeyCanUsePrivatePapers: 1, KeyCanStartPrivatePapers: 1})},
			Categories:    sampleCategories(),
		})
		require.True(t, doc.HasCategory(5))
		cat := doc.Category(5)
		assert.Equal(t, 1, cat.CanStartPapers)
		assert.Equal(t, 1, cat.CanEditPosts)
		assert.Zero(t, cat.CanHidePosts)
		assert.False(t, doc.CanSeeReportsIn(5))
	})

	t.Run("Success - private papers for moderators", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Roles:         []models.Role{role(1, models.ACLFragment{KeyCanUsePrivatePapers: 1, KeyCanModeratePrivatePapers: 1})},
			Categories:    sampleCategories(),
		})
		cat := doc.Category(5)
		assert.Zero(t, cat.CanStartPapers)
		assert.Equal(t, 2, cat.CanHidePosts)
		assert.Equal(t, 1, cat.CanClosePapers)
		assert.True(t, doc.CanSeeReportsIn(5))
	})

	t.Run("Success - no private papers resets start", func(t *testing.T) {
		doc := Build(BuildInput{
			Authenticated: true,
			Roles:         []models.Role{role(1, models.ACLFragment{KeyCanStartPrivatePapers: 1})},
			Categories:    sampleCategories(),
		})
		assert.Zero(t, doc.CanStartPrivatePapers)
		assert.False(t, doc.HasCategory(5))
	})

	t.Run("Success - role order does not matter", func(t *testing.T) {
		a := role(1, models.ACLFragment{KeyMaxPrivatePaperParticipants: 7, KeyCanUsePrivatePapers: 1})
		b := role(2, models.ACLFragment{KeyMaxPrivatePaperParticipants: 4, KeyCanModeratePrivatePapers: 1})
		in := BuildInput{Authenticated: true, Categories: sampleCategories()}

		in.Roles = []models.Role{a, b}
		first := Build(in)
		in.Roles = []models.Role{b, a}
		second := Build(in)

		assert.Equal(t, first, second)
	})
}
