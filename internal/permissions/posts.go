package permissions

import (
	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
)

// Post guards expect Paper (and its Category) to be loaded on the target.

func AllowSeePost(user *acl.UserACL, target *models.Post) error {
	cat := user.Category(target.CategoryID)

	if !target.IsEvent && target.IsUnapproved {
		if user.IsAnonymous {
			return apperr.NotFound("post")
		}
		if cat.CanApproveContent == 0 && !target.IsPoster(user.UserID) {
			return apperr.NotFound("post")
		}
	}

	if target.IsEvent && target.IsHidden && cat.CanHideEvents == 0 {
		return apperr.NotFound("post")
	}
	return nil
}

func CanSeePost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowSeePost(user, target))
}

func AllowEditPost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to edit posts.")
	}
	if target.IsEvent {
		return apperr.Denied(apperr.ReasonEvent, "Events can't be edited.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanEditPosts == 0 {
		return denied("You can't edit posts in this category.")
	}
	if target.IsHidden && !target.IsFirstPost() && cat.CanHidePosts == 0 {
		return apperr.Denied(apperr.ReasonHidden, "This post is hidden, you can't edit it.")
	}

	if cat.CanEditPosts == 1 {
		if !target.IsPoster(user.UserID) {
			return apperr.Denied(apperr.ReasonNotOwner, "You can't edit other users posts in this category.")
		}
		if target.IsProtected && cat.CanProtectPosts == 0 {
			return apperr.Denied(apperr.ReasonProtected, "This post is protected. You can't edit it.")
		}
		if !HasTimeToEditPost(user, target) {
			return tooOld("edit", "posts", cat.PostEditTime)
		}
	}

	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't edit posts in it.",
		"This paper is closed. You can't edit posts in it.")
}

func CanEditPost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowEditPost(user, target))
}

// ownPostGate applies the checks for acting on one's own post: ownership,
// protection and the edit window.
func ownPostGate(user *acl.UserACL, cat acl.CategoryACL, target *models.Post, action string) error {
	if !target.IsPoster(user.UserID) {
		return apperr.Denied(apperr.ReasonNotOwner, "You can't %s other users posts in this category.", action)
	}
	if target.IsProtected && cat.CanProtectPosts == 0 {
		return apperr.Denied(apperr.ReasonProtected, "This post is protected. You can't %s it.", action)
	}
	if !HasTimeToEditPost(user, target) {
		return tooOld(action, "posts", cat.PostEditTime)
	}
	return nil
}

func AllowUnhidePost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to reveal posts.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanHidePosts == 0 {
		if cat.CanHideOwnPosts == 0 {
			return denied("You can't reveal posts in this category.")
		}
		if err := ownPostGate(user, cat, target, "reveal"); err != nil {
			return err
		}
	}

	if target.IsFirstPost() {
		return apperr.Denied(apperr.ReasonFirstPost, "You can't reveal paper's first post.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't reveal posts in it.",
		"This paper is closed. You can't reveal posts in it.")
}

func CanUnhidePost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowUnhidePost(user, target))
}

func AllowHidePost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to hide posts.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanHidePosts == 0 {
		if cat.CanHideOwnPosts == 0 {
			return denied("You can't hide posts in this category.")
		}
		if err := ownPostGate(user, cat, target, "hide"); err != nil {
			return err
		}
	}

	if target.IsFirstPost() {
		return apperr.Denied(apperr.ReasonFirstPost, "You can't hide paper's first post.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't hide posts in it.",
		"This paper is closed. You can't hide posts in it.")
}

func CanHidePost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowHidePost(user, target))
}

func AllowDeletePost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to delete posts.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanHidePosts != 2 {
		if cat.CanHideOwnPosts != 2 {
			return denied("You can't delete posts in this category.")
		}
		if err := ownPostGate(user, cat, target, "delete"); err != nil {
			return err
		}
	}

	if target.IsFirstPost() {
		return apperr.Denied(apperr.ReasonFirstPost, "You can't delete paper's first post.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't delete posts in it.",
		"This paper is closed. You can't delete posts in it.")
}

func CanDeletePost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowDeletePost(user, target))
}

func AllowProtectPost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to protect posts.")
	}

	if user.Category(target.CategoryID).CanProtectPosts == 0 {
		return denied("You can't protect posts in this category.")
	}
	if !CanEditPost(user, target) {
		return denied("You can't protect posts you can't edit.")
	}
	return nil
}

func CanProtectPost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowProtectPost(user, target))
}

func AllowApprovePost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to approve posts.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanApproveContent == 0 {
		return denied("You can't approve posts in this category.")
	}
	if target.IsFirstPost() {
		return apperr.Denied(apperr.ReasonFirstPost, "You can't approve paper's first post.")
	}
	if target.IsHidden && cat.CanHidePosts == 0 {
		return apperr.Denied(apperr.ReasonHidden, "You can't approve posts the content you can't see.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't approve posts in it.",
		"This paper is closed. You can't approve posts in it.")
}

func CanApprovePost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowApprovePost(user, target))
}

func AllowMovePost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to move posts.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanMovePosts == 0 {
		return denied("You can't move posts in this category.")
	}
	if target.IsEvent {
		return apperr.Denied(apperr.ReasonEvent, "Events can't be moved.")
	}
	if target.IsFirstPost() {
		return apperr.Denied(apperr.ReasonFirstPost, "You can't move paper's first post.")
	}
	if target.IsHidden && cat.CanHidePosts == 0 {
		return apperr.Denied(apperr.ReasonHidden, "You can't move posts the content you can't see.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't move posts in it.",
		"This paper is closed. You can't move posts in it.")
}

func CanMovePost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowMovePost(user, target))
}

func AllowMergePost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to merge posts.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanMergePosts == 0 {
		return denied("You can't merge posts in this category.")
	}
	if target.IsEvent {
		return apperr.Denied(apperr.ReasonEvent, "Events can't be merged.")
	}
	if target.IsHidden && cat.CanHidePosts == 0 && !target.IsFirstPost() {
		return apperr.Denied(apperr.ReasonHidden, "You can't merge posts the content you can't see.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't merge posts in it.",
		"This paper is closed. You can't merge posts in it.")
}

func CanMergePost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowMergePost(user, target))
}

func AllowSplitPost(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to split posts.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanMovePosts == 0 {
		return denied("You can't split posts in this category.")
	}
	if target.IsEvent {
		return apperr.Denied(apperr.ReasonEvent, "Events can't be split.")
	}
	if target.IsFirstPost() {
		return apperr.Denied(apperr.ReasonFirstPost, "You can't split paper's first post.")
	}
	if target.IsHidden && cat.CanHidePosts == 0 {
		return apperr.Denied(apperr.ReasonHidden, "You can't split posts the content you can't see.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't split posts in it.",
		"This paper is closed. You can't split posts in it.")
}

func CanSplitPost(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowSplitPost(user, target))
}
