package permissions

import (
	"testing"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanForms(t *testing.T) {
	t.Run("Success - start paper", func(t *testing.T) {
		category := &models.Category{ID: generalID}
		assert.True(t, CanStartPaper(member(acl.CategoryACL{CanStartPapers: 1}), category))
		assert.False(t, CanStartPaper(member(acl.CategoryACL{}), category))
		assert.False(t, CanStartPaper(guest(acl.CategoryACL{CanStartPapers: 1}), category))

		category.IsClosed = true
		assert.False(t, CanStartPaper(member(acl.CategoryACL{CanStartPapers: 1}), category))
		assert.True(t, CanStartPaper(member(acl.CategoryACL{CanStartPapers: 1, CanClosePapers: 1}), category))
	})

	t.Run("Success - split post", func(t *testing.T) {
		paper := ownPaper()
		post := reply(paper, strangerID)
		assert.True(t, CanSplitPost(member(acl.CategoryACL{CanMovePosts: 1}), post))
		assert.False(t, CanSplitPost(member(acl.CategoryACL{}), post))

		post.ID = *paper.FirstPostID
		assert.False(t, CanSplitPost(member(acl.CategoryACL{CanMovePosts: 1}), post))
	})

	t.Run("Success - participants", func(t *testing.T) {
		owner := member(acl.CategoryACL{})
		owner.CanUsePrivatePapers = 1
		paper := ownPaper()
		paper.ParticipantsList = []models.PaperParticipant{
			{PaperID: paper.ID, UserID: userID, IsOwner: true},
			{PaperID: paper.ID, UserID: strangerID},
		}
		stranger := &models.User{ID: strangerID, Username: "bob"}

		assert.True(t, CanAddParticipants(owner, paper))
		assert.True(t, CanRemoveParticipant(owner, paper, stranger))

		other := member(acl.CategoryACL{})
		other.UserID = strangerID
		assert.False(t, CanAddParticipants(other, paper))
		assert.False(t, CanRemoveParticipant(other, paper, &models.User{ID: userID}))
		assert.True(t, CanRemoveParticipant(other, paper, stranger))
	})

	t.Run("Success - invitations respect preferences", func(t *testing.T) {
		user := member(acl.CategoryACL{})
		user.CanUsePrivatePapers = 1
		invitee := &models.User{ID: strangerID, Username: "bob"}
		inviteeACL := &acl.UserACL{UserID: strangerID, IsAuthenticated: true, CanUsePrivatePapers: 1}

		assert.True(t, CanAddParticipant(user, invitee, inviteeACL))
		assert.True(t, CanMessageUser(user, invitee, inviteeACL))

		invitee.LimitsPrivateInvites = models.InvitesFromNobody
		assert.False(t, CanMessageUser(user, invitee, inviteeACL))

		invitee.LimitsPrivateInvites = models.InvitesFromEveryone
		assert.False(t, CanAddParticipant(user, invitee, &acl.UserACL{UserID: strangerID, IsAuthenticated: true}))

		user.CanUsePrivatePapers = 0
		assert.False(t, CanMessageUser(user, invitee, inviteeACL))
	})
}
