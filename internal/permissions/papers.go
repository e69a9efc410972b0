package permissions

import (
	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
)

func AllowSeePaper(user *acl.UserACL, target *models.Paper) error {
	cat, ok := user.Categories[target.CategoryID]
	if !ok || cat.CanSee == 0 || cat.CanBrowse == 0 {
		return apperr.NotFound("paper")
	}

	if target.IsHidden && (user.IsAnonymous || cat.CanHidePapers == 0) {
		return apperr.NotFound("paper")
	}

	if user.IsAnonymous || !target.IsStarter(user.UserID) {
		if cat.CanSeeAllPapers == 0 {
			return apperr.NotFound("paper")
		}
		if target.IsUnapproved && cat.CanApproveContent == 0 {
			return apperr.NotFound("paper")
		}
	}
	return nil
}

func CanSeePaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowSeePaper(user, target))
}

// AllowStartPaper checks starting a new paper in category.
func AllowStartPaper(user *acl.UserACL, category *models.Category) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to start papers.")
	}

	cat := user.Category(category.ID)
	if cat.CanStartPapers == 0 {
		return denied("You don't have permission to start new papers in this category.")
	}
	if category.IsClosed && cat.CanClosePapers == 0 {
		return categoryClosed("This category is closed. You can't start new papers in it.")
	}
	return nil
}

func CanStartPaper(user *acl.UserACL, category *models.Category) bool {
	return boolean(AllowStartPaper(user, category))
}

func AllowReplyPaper(user *acl.UserACL, target *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to reply papers.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanReplyPapers == 0 {
		return denied("You can't reply to papers in this category.")
	}
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't reply to papers in it.",
		"You can't reply to closed papers in this category.")
}

func CanReplyPaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowReplyPaper(user, target))
}

func AllowEditPaper(user *acl.UserACL, target *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to edit papers.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanEditPapers == 0 {
		return denied("You can't edit papers in this category.")
	}
	if cat.CanEditPapers == 1 {
		if !target.IsStarter(user.UserID) {
			return apperr.Denied(apperr.ReasonNotOwner, "You can't edit other users papers in this category.")
		}
		if !HasTimeToEditPaper(user, target) {
			return tooOld("edit", "papers", cat.PaperEditTime)
		}
	}
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't edit papers in it.",
		"This paper is closed. You can't edit it.")
}

func CanEditPaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowEditPaper(user, target))
}

func AllowPinPaper(user *acl.UserACL, target *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to change papers weights.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanPinPapers == 0 {
		return denied("You can't change papers weights in this category.")
	}
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't change papers weights in it.",
		"This paper is closed. You can't change its weight.")
}

func CanPinPaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowPinPaper(user, target))
}

// AllowPinPaperGlobally additionally requires the global pin level.
func AllowPinPaperGlobally(user *acl.UserACL, target *models.Paper) error {
	if err := AllowPinPaper(user, target); err != nil {
		return err
	}
	if user.Category(target.CategoryID).CanPinPapers < 2 {
		return denied("You can't pin papers globally in this category.")
	}
	return nil
}

func AllowUnhidePaper(user *acl.UserACL, target *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to hide papers.")
	}

	cat := user.Category(target.CategoryID)
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't reveal papers in it.",
		"This paper is closed. You can't reveal it.")
}

func CanUnhidePaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowUnhidePaper(user, target))
}

func AllowHidePaper(user *acl.UserACL, target *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to hide papers.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanHidePapers == 0 && cat.CanHideOwnPapers == 0 {
		return denied("You can't hide papers in this category.")
	}
	if cat.CanHidePapers == 0 {
		if !target.IsStarter(user.UserID) {
			return apperr.Denied(apperr.ReasonNotOwner, "You can't hide other users papers in this category.")
		}
		if !HasTimeToEditPaper(user, target) {
			return tooOld("hide", "papers", cat.PaperEditTime)
		}
	}
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't hide papers in it.",
		"This paper is closed. You can't hide it.")
}

func CanHidePaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowHidePaper(user, target))
}

func AllowDeletePaper(user *acl.UserACL, target *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to delete papers.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanHidePapers != 2 && cat.CanHideOwnPapers != 2 {
		return denied("You can't delete papers in this category.")
	}
	if cat.CanHidePapers != 2 {
		if !target.IsStarter(user.UserID) {
			return apperr.Denied(apperr.ReasonNotOwner, "You can't delete other users papers in this category.")
		}
		if !HasTimeToEditPaper(user, target) {
			return tooOld("delete", "papers", cat.PaperEditTime)
		}
	}
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't delete papers in it.",
		"This paper is closed. You can't delete it.")
}

func CanDeletePaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowDeletePaper(user, target))
}

func AllowMovePaper(user *acl.UserACL, target *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to move papers.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanMovePapers == 0 {
		return denied("You can't move papers in this category.")
	}
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't move it's papers.",
		"This paper is closed. You can't move it.")
}

func CanMovePaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowMovePaper(user, target))
}

// AllowMergePaper checks merging target. otherPaper switches the messages
// to those shown when target is the paper being merged into.
func AllowMergePaper(user *acl.UserACL, target *models.Paper, otherPaper bool) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to merge papers.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanMergePapers == 0 {
		if otherPaper {
			return denied("Other paper can't be merged with.")
		}
		return denied("You can't merge papers in this category.")
	}

	if otherPaper {
		return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
			"Other paper's category is closed. You can't merge with it.",
			"Other paper is closed and can't be merged with.")
	}
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't merge it's papers.",
		"This paper is closed. You can't merge it with other papers.")
}

func CanMergePaper(user *acl.UserACL, target *models.Paper, otherPaper bool) bool {
	return boolean(AllowMergePaper(user, target, otherPaper))
}

func AllowApprovePaper(user *acl.UserACL, target *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to approve papers.")
	}

	cat := user.Category(target.CategoryID)
	if cat.CanApproveContent == 0 {
		return denied("You can't approve papers in this category.")
	}
	return closedGate(cat, target.CategoryIsClosed(), target.IsClosed,
		"This category is closed. You can't approve papers in it.",
		"This paper is closed. You can't approve it.")
}

func CanApprovePaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowApprovePaper(user, target))
}

// CanChangeOwnedPaper reports whether the starter may still change their
// own paper: it is open and within the edit window.
func CanChangeOwnedPaper(user *acl.UserACL, target *models.Paper) bool {
	if user.IsAnonymous || !target.IsStarter(user.UserID) {
		return false
	}
	if target.CategoryIsClosed() || target.IsClosed {
		return false
	}
	return HasTimeToEditPaper(user, target)
}

func HasTimeToEditPaper(user *acl.UserACL, target *models.Paper) bool {
	return withinWindow(user.Category(target.CategoryID).PaperEditTime, target.StartedOn)
}

func HasTimeToEditPost(user *acl.UserACL, target *models.Post) bool {
	return withinWindow(user.Category(target.CategoryID).PostEditTime, target.PostedOn)
}
