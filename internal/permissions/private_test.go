package permissions

import (
	"testing"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/stretchr/testify/assert"
)

func privatePaper(owner uint, others ...uint) *models.Paper {
	p := ownPaper()
	p.Category.Special = models.CategoryPrivatePapers
	p.ParticipantsList = []models.PaperParticipant{{UserID: owner, IsOwner: true}}
	for _, id := range others {
		p.ParticipantsList = append(p.ParticipantsList, models.PaperParticipant{UserID: id})
	}
	return p
}

func privateUser(moderator bool) *acl.UserACL {
	u := member(acl.CategoryACL{})
	u.CanUsePrivatePapers = 1
	if moderator {
		u.CanModeratePrivatePapers = 1
	}
	return u
}

func TestPrivatePaperGuards(t *testing.T) {
	t.Run("Error - use private papers", func(t *testing.T) {
		assert.True(t, apperr.HasReason(AllowUsePrivatePapers(guest(acl.CategoryACL{})), apperr.ReasonSignInRequired))
		assert.Error(t, AllowUsePrivatePapers(member(acl.CategoryACL{})))
		assert.NoError(t, AllowUsePrivatePapers(privateUser(false)))
	})

	t.Run("Success - see as participant", func(t *testing.T) {
		assert.NoError(t, AllowSeePrivatePaper(privateUser(false), privatePaper(strangerID, userID)))
		assert.True(t, apperr.IsNotFound(AllowSeePrivatePaper(privateUser(false), privatePaper(strangerID))))
	})

	t.Run("Success - moderators see reported papers", func(t *testing.T) {
		paper := privatePaper(strangerID)
		assert.False(t, CanSeePrivatePaper(privateUser(true), paper))
		paper.HasReportedPosts = true
		assert.True(t, CanSeePrivatePaper(privateUser(true), paper))
	})

	t.Run("Error - change owner", func(t *testing.T) {
		assert.NoError(t, AllowChangeOwner(privateUser(false), privatePaper(userID)))
		assert.True(t, apperr.HasReason(AllowChangeOwner(privateUser(false), privatePaper(strangerID, userID)), apperr.ReasonNotOwner))

		closed := privatePaper(userID)
		closed.IsClosed = true
		assert.True(t, apperr.HasReason(AllowChangeOwner(privateUser(false), closed), apperr.ReasonPaperClosed))
		assert.NoError(t, AllowChangeOwner(privateUser(true), closed))
	})

	t.Run("Error - participant limit", func(t *testing.T) {
		user := privateUser(false)
		assert.NoError(t, AllowAddParticipants(user, privatePaper(userID, 1, 2)))
		err := AllowAddParticipants(user, privatePaper(userID, 1, 2, 3))
		assert.True(t, apperr.HasReason(err, apperr.ReasonLimitReached))

		user.MaxPrivatePaperParticipants = 0
		assert.NoError(t, AllowAddParticipants(user, privatePaper(userID, 1, 2, 3, 4, 5)))
	})

	t.Run("Success - remove participant", func(t *testing.T) {
		self := &models.User{ID: userID}
		other := &models.User{ID: 99}

		assert.NoError(t, AllowRemoveParticipant(privateUser(false), privatePaper(strangerID, userID), self))
		assert.Error(t, AllowRemoveParticipant(privateUser(false), privatePaper(strangerID, userID, 99), other))
		assert.NoError(t, AllowRemoveParticipant(privateUser(false), privatePaper(userID, 99), other))
		assert.NoError(t, AllowRemoveParticipant(privateUser(true), privatePaper(strangerID, 99), other))

		closed := privatePaper(userID, 99)
		closed.IsClosed = true
		assert.True(t, apperr.HasReason(AllowRemoveParticipant(privateUser(false), closed, other), apperr.ReasonPaperClosed))
		assert.NoError(t, AllowRemoveParticipant(privateUser(false), closed, self))
	})

	t.Run("Error - add participant preferences", func(t *testing.T) {
		user := privateUser(false)
		targetACL := privateUser(false)

		assert.NoError(t, AllowAddParticipant(user, &models.User{ID: 50, Username: "bob"}, targetACL))
		assert.Error(t, AllowAddParticipant(user, &models.User{ID: 50, Username: "bob"}, member(acl.CategoryACL{})))

		blocking := &models.User{ID: 50, Username: "bob", Blocking: []*models.User{{ID: userID}}}
		assert.True(t, apperr.HasReason(AllowAddParticipant(user, blocking, targetACL), apperr.ReasonUserPreference))

		nobody := &models.User{ID: 50, Username: "bob", LimitsPrivateInvites: models.InvitesFromNobody}
		assert.Error(t, AllowAddParticipant(user, nobody, targetACL))

		followed := &models.User{ID: 50, Username: "bob", LimitsPrivateInvites: models.InvitesFromFollowed}
		assert.Error(t, AllowAddParticipant(user, followed, targetACL))
		followed.Following = []*models.User{{ID: userID}}
		assert.NoError(t, AllowAddParticipant(user, followed, targetACL))

		user.CanAddEveryoneToPrivatePapers = 1
		assert.NoError(t, AllowAddParticipant(user, blocking, targetACL))
		assert.NoError(t, AllowAddParticipant(user, nobody, targetACL))

		unblockable := privateUser(false)
		unblockable.CanBeBlocked = 0
		assert.NoError(t, AllowAddParticipant(unblockable, blocking, targetACL))
	})

	t.Run("Error - message user", func(t *testing.T) {
		target := &models.User{ID: 50, Username: "bob"}
		assert.Error(t, AllowMessageUser(member(acl.CategoryACL{}), target, privateUser(false)))
		assert.NoError(t, AllowMessageUser(privateUser(false), target, privateUser(false)))
	})
}
