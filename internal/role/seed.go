package role

import (
	"fmt"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var defaultRoles = []models.Role{
	{
		Name:        "Guest",
		SpecialRole: models.SpecialRoleAnonymous,
		Description: "Permissions of visitors that are not signed in",
		Permissions: datatypes.NewJSONType(models.ACLFragment{}),
	},
	{
		Name:        "Member",
		SpecialRole: models.SpecialRoleAuthenticated,
		Description: "Permissions every signed in user has",
		Permissions: datatypes.NewJSONType(models.ACLFragment{
			acl.KeyCanUsePrivatePapers:         1,
			acl.KeyCanStartPrivatePapers:       1,
			acl.KeyMaxPrivatePaperParticipants: 3,
			acl.KeyCanReportPrivatePapers:      1,
			acl.KeyCanBeBlocked:                1,
		}),
	},
	{
		Name:        "Moderator",
		Description: "Can moderate content in every category",
		Permissions: datatypes.NewJSONType(models.ACLFragment{
			acl.KeyCanSeeUnapprovedContentLists:  1,
			acl.KeyCanSeeReportedContentLists:    1,
			acl.KeyCanOmitFloodProtection:        1,
			acl.KeyCanUsePrivatePapers:           1,
			acl.KeyCanStartPrivatePapers:         1,
			acl.KeyMaxPrivatePaperParticipants:   15,
			acl.KeyCanAddEveryoneToPrivatePapers: 1,
			acl.KeyCanReportPrivatePapers:        1,
			acl.KeyCanModeratePrivatePapers:      1,
			acl.KeyCanBeBlocked:                  0,
		}),
	},
	{
		Name:        "admin",
		Description: "Manages roles and permissions",
		Permissions: datatypes.NewJSONType(models.ACLFragment{
			acl.KeyCanUsePrivatePapers:         1,
			acl.KeyCanStartPrivatePapers:       1,
			acl.KeyMaxPrivatePaperParticipants: 0,
			acl.KeyCanModeratePrivatePapers:    1,
			acl.KeyCanBeBlocked:                0,
		}),
	},
}

var readOnly = models.ACLFragment{
	acl.KeyCanSee:           1,
	acl.KeyCanBrowse:        1,
	acl.KeyCanSeeAllPapers:  1,
	acl.KeyCanSeePostsLikes: 1,
}

var startAndReply = models.ACLFragment{
	acl.KeyCanSee:           1,
	acl.KeyCanBrowse:        1,
	acl.KeyCanSeeAllPapers:  1,
	acl.KeyCanStartPapers:   1,
	acl.KeyCanReplyPapers:   1,
	acl.KeyCanEditPapers:    1,
	acl.KeyCanEditPosts:     1,
	acl.KeyCanHideOwnPosts:  1,
	acl.KeyPaperEditTime:    30,
	acl.KeyPostEditTime:     30,
	acl.KeyCanReportContent: 1,
	acl.KeyCanSeePostsLikes: 2,
	acl.KeyCanLikePosts:     1,
}

var moderator = models.ACLFragment{
	acl.KeyCanSee:            1,
	acl.KeyCanBrowse:         1,
	acl.KeyCanSeeAllPapers:   1,
	acl.KeyCanStartPapers:    1,
	acl.KeyCanReplyPapers:    1,
	acl.KeyCanEditPapers:     2,
	acl.KeyCanEditPosts:      2,
	acl.KeyCanHideOwnPapers:  2,
	acl.KeyCanHideOwnPosts:   2,
	acl.KeyCanHidePapers:     2,
	acl.KeyCanHidePosts:      2,
	acl.KeyCanProtectPosts:   1,
	acl.KeyCanMovePosts:      1,
	acl.KeyCanMergePosts:     1,
	acl.KeyCanPinPapers:      2,
	acl.KeyCanClosePapers:    1,
	acl.KeyCanMovePapers:     1,
	acl.KeyCanMergePapers:    1,
	acl.KeyCanApproveContent: 1,
	acl.KeyCanReportContent:  1,
	acl.KeyCanSeeReports:     1,
	acl.KeyCanSeePostsLikes:  2,
	acl.KeyCanLikePosts:      1,
	acl.KeyCanHideEvents:     2,
}

var defaultCategoryRoles = []models.CategoryRole{
	{Name: "See only", Permissions: datatypes.NewJSONType(models.ACLFragment{acl.KeyCanSee: 1})},
	{Name: "Read only", Permissions: datatypes.NewJSONType(readOnly)},
	{Name: "Start and reply papers", Permissions: datatypes.NewJSONType(startAndReply)},
	{Name: "Moderator", Permissions: datatypes.NewJSONType(moderator)},
}

// grants maps role names to the category role they get in the default
// category.
var grants = map[string]string{
	"Guest":     "Read only",
	"Member":    "Start and reply papers",
	"Moderator": "Moderator",
	"admin":     "Moderator",
}

// SeedDefaultRoles creates the default roles, category roles, the root and
// first category, and the grants between them. Existing rows are kept.
func SeedDefaultRoles(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		roles := map[string]uint{}
		for _, r := range defaultRoles {
			role := r
			if err := tx.Where(models.Role{Name: r.Name}).Attrs(role).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", r.Name, err)
			}
			roles[role.Name] = role.ID
		}

		categoryRoles := map[string]uint{}
		for _, r := range defaultCategoryRoles {
			role := r
			if err := tx.Where(models.CategoryRole{Name: r.Name}).Attrs(role).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed category role %s: %w", r.Name, err)
			}
			categoryRoles[role.Name] = role.ID
		}

		root := models.Category{Name: "Root", Slug: "root", Special: models.CategoryRoot}
		if err := tx.Where(models.Category{Special: models.CategoryRoot}).Attrs(root).FirstOrCreate(&root).Error; err != nil {
			return fmt.Errorf("seed root category: %w", err)
		}
		private := models.Category{Name: "Private papers", Slug: "private-papers", Special: models.CategoryPrivatePapers}
		if err := tx.Where(models.Category{Special: models.CategoryPrivatePapers}).Attrs(private).FirstOrCreate(&private).Error; err != nil {
			return fmt.Errorf("seed private category: %w", err)
		}
		general := models.Category{Name: "General", Slug: utils.Slugify("General"), ParentID: &root.ID}
		if err := tx.Where(models.Category{Slug: general.Slug}).Attrs(general).FirstOrCreate(&general).Error; err != nil {
			return fmt.Errorf("seed general category: %w", err)
		}

		for roleName, categoryRoleName := range grants {
			link := models.RoleCategoryACL{RoleID: roles[roleName], CategoryID: general.ID}
			err := tx.Where(link).
				Attrs(models.RoleCategoryACL{CategoryRoleID: categoryRoles[categoryRoleName]}).
				FirstOrCreate(&link).Error
			if err != nil {
				return fmt.Errorf("grant %s in %s: %w", roleName, general.Name, err)
			}
		}
		return nil
	})
}
