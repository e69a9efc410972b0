package permissions

import (
	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
)

// Private paper guards expect ParticipantsList to be loaded on the paper.

func AllowUsePrivatePapers(user *acl.UserACL) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to use private papers.")
	}
	if user.CanUsePrivatePapers == 0 {
		return denied("You can't use private papers.")
	}
	return nil
}

func CanUsePrivatePapers(user *acl.UserACL) bool {
	return boolean(AllowUsePrivatePapers(user))
}

// AllowSeePrivatePaper lets participants in. Moderators also see papers
// with reported posts.
func AllowSeePrivatePaper(user *acl.UserACL, target *models.Paper) error {
	reported := user.IsPrivatePapersModerator() && target.HasReportedPosts
	participating := user.UserID != 0 && target.ParticipantFor(user.UserID) != nil
	if !reported && !participating {
		return apperr.NotFound("paper")
	}
	return nil
}

func CanSeePrivatePaper(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowSeePrivatePaper(user, target))
}

func AllowChangeOwner(user *acl.UserACL, target *models.Paper) error {
	moderator := user.IsPrivatePapersModerator()
	if !moderator && !target.IsOwner(user.UserID) {
		return apperr.Denied(apperr.ReasonNotOwner, "Only paper owner and moderators can change papers owners.")
	}
	if !moderator && target.IsClosed {
		return paperClosed("Only moderators can change closed papers owners.")
	}
	return nil
}

func CanChangeOwner(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowChangeOwner(user, target))
}

// AllowAddParticipants checks the paper side of inviting users. A
// participant limit of 0 means no limit.
func AllowAddParticipants(user *acl.UserACL, target *models.Paper) error {
	if !user.IsPrivatePapersModerator() {
		if !target.IsOwner(user.UserID) {
			return apperr.Denied(apperr.ReasonNotOwner, "You have to be paper owner to add new participants to it.")
		}
		if target.IsClosed {
			return paperClosed("Only moderators can add participants to closed papers.")
		}
	}

	limit := user.MaxPrivatePaperParticipants
	if limit > 0 && len(target.ParticipantsList)-1 >= limit {
		return apperr.Denied(apperr.ReasonLimitReached, "You can't add any more new users to this paper.")
	}
	return nil
}

func CanAddParticipants(user *acl.UserACL, target *models.Paper) bool {
	return boolean(AllowAddParticipants(user, target))
}

func AllowRemoveParticipant(user *acl.UserACL, paper *models.Paper, target *models.User) error {
	if user.IsPrivatePapersModerator() {
		return nil
	}
	if user.UserID != 0 && user.UserID == target.ID {
		return nil
	}
	if paper.IsClosed {
		return paperClosed("Only moderators can remove participants from closed papers.")
	}
	if !paper.IsOwner(user.UserID) {
		return apperr.Denied(apperr.ReasonNotOwner, "You have to be paper owner to remove participants from it.")
	}
	return nil
}

func CanRemoveParticipant(user *acl.UserACL, paper *models.Paper, target *models.User) bool {
	return boolean(AllowRemoveParticipant(user, paper, target))
}

// AllowAddParticipant checks whether target may be invited by user.
// targetACL is the invitee's own document; Blocking and Following must be
// loaded on target.
func AllowAddParticipant(user *acl.UserACL, target *models.User, targetACL *acl.UserACL) error {
	if !CanUsePrivatePapers(targetACL) {
		return apperr.Denied(apperr.ReasonNoPermission, "%s can't participate in private papers.", target.Username)
	}
	if user.CanAddEveryoneToPrivatePapers > 0 {
		return nil
	}
	if user.CanBeBlocked > 0 && target.IsBlocking(user.UserID) {
		return apperr.Denied(apperr.ReasonUserPreference, "%s is blocking you.", target.Username)
	}
	if target.CanBeMessagedByNobody() {
		return apperr.Denied(apperr.ReasonUserPreference, "%s is not allowing invitations to private papers.", target.Username)
	}
	if target.CanBeMessagedByFollowed() && !target.IsFollowing(user.UserID) {
		return apperr.Denied(apperr.ReasonUserPreference, "%s limits invitations to private papers to followed users.", target.Username)
	}
	return nil
}

func CanAddParticipant(user *acl.UserACL, target *models.User, targetACL *acl.UserACL) bool {
	return boolean(AllowAddParticipant(user, target, targetACL))
}

func AllowMessageUser(user *acl.UserACL, target *models.User, targetACL *acl.UserACL) error {
	if err := AllowUsePrivatePapers(user); err != nil {
		return err
	}
	return AllowAddParticipant(user, target, targetACL)
}

func CanMessageUser(user *acl.UserACL, target *models.User, targetACL *acl.UserACL) bool {
	return boolean(AllowMessageUser(user, target, targetACL))
}
