package permissions

import (
	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
)

func AllowUnhideEvent(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to reveal events.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanHideEvents == 0 {
		return denied("You can't reveal events in this category.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't reveal events in it.",
		"This paper is closed. You can't reveal events in it.")
}

func CanUnhideEvent(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowUnhideEvent(user, target))
}

func AllowHideEvent(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to hide events.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanHideEvents == 0 {
		return denied("You can't hide events in this category.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't hide events in it.",
		"This paper is closed. You can't hide events in it.")
}

func CanHideEvent(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowHideEvent(user, target))
}

func AllowDeleteEvent(user *acl.UserACL, target *models.Post) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to delete events.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanHideEvents != 2 {
		return denied("You can't delete events in this category.")
	}
	return closedGate(cat, postCategoryIsClosed(target), postPaperIsClosed(target),
		"This category is closed. You can't delete events in it.",
		"This paper is closed. You can't delete events in it.")
}

func CanDeleteEvent(user *acl.UserACL, target *models.Post) bool {
	return boolean(AllowDeleteEvent(user, target))
}
