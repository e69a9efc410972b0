package permissions

import (
	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/models"
)

// PaperDecorator fills part of a paper's PaperACL.
type PaperDecorator func(user *acl.UserACL, paper *models.Paper, out *models.PaperACL)

// PostDecorator fills part of a post's PostACL.
type PostDecorator func(user *acl.UserACL, post *models.Post, out *models.PostACL)

// Decorators run in declaration order; later ones may read what earlier
// ones set.
var (
	paperDecorators = []PaperDecorator{decoratePaper, decoratePrivatePaper}
	postDecorators  = []PostDecorator{decoratePost}
)

// AddACLToPaper attaches a fresh PaperACL to paper.
func AddACLToPaper(user *acl.UserACL, paper *models.Paper) {
	out := &models.PaperACL{}
	for _, d := range paperDecorators {
		d(user, paper, out)
	}
	paper.ACL = out
}

func AddACLToPapers(user *acl.UserACL, papers []models.Paper) {
	for i := range papers {
		AddACLToPaper(user, &papers[i])
	}
}

// AddACLToPost attaches a fresh PostACL to post. Paper must be loaded.
func AddACLToPost(user *acl.UserACL, post *models.Post) {
	out := &models.PostACL{}
	for _, d := range postDecorators {
		d(user, post, out)
	}
	post.ACL = out
}

func AddACLToPosts(user *acl.UserACL, posts []models.Post) {
	for i := range posts {
		AddACLToPost(user, &posts[i])
	}
}

func decoratePaper(user *acl.UserACL, paper *models.Paper, out *models.PaperACL) {
	cat := user.Category(paper.CategoryID)

	out.CanReply = CanReplyPaper(user, paper)
	out.CanEdit = CanEditPaper(user, paper)
	out.CanPin = CanPinPaper(user, paper)
	out.CanPinGlobally = out.CanPin && cat.CanPinPapers == 2
	out.CanHide = CanHidePaper(user, paper)
	out.CanUnhide = CanUnhidePaper(user, paper)
	out.CanDelete = CanDeletePaper(user, paper)
	out.CanClose = cat.CanClosePapers > 0
	out.CanMove = CanMovePaper(user, paper)
	out.CanMerge = CanMergePaper(user, paper, false)
	out.CanMovePosts = cat.CanMovePosts > 0
	out.CanMergePosts = cat.CanMergePosts > 0
	out.CanApprove = CanApprovePaper(user, paper)
	out.CanSeeReports = cat.CanSeeReports > 0
	out.CanStartPoll = CanEditPaper(user, paper) && !paper.IsPrivate()
}

func decoratePrivatePaper(user *acl.UserACL, paper *models.Paper, out *models.PaperACL) {
	if !paper.IsPrivate() {
		return
	}
	out.CanStartPoll = false
	out.CanChangeOwner = CanChangeOwner(user, paper)
	out.CanAddParticipants = CanAddParticipants(user, paper)
}

func decoratePost(user *acl.UserACL, post *models.Post, out *models.PostACL) {
	if post.IsEvent {
		canHideEvents := 0
		if user.IsAuthenticated {
			canHideEvents = user.Category(post.CategoryID).CanHideEvents
		}
		out.CanSeeHidden = canHideEvents > 0
		out.CanHide = CanHideEvent(user, post)
		out.CanUnhide = CanUnhideEvent(user, post)
		out.CanDelete = CanDeleteEvent(user, post)
		return
	}

	cat := user.Category(post.CategoryID)
	if post.Paper != nil {
		out.CanReply = CanReplyPaper(user, post.Paper)
	}
	out.CanEdit = CanEditPost(user, post)
	out.CanSeeHidden = post.IsFirstPost() || cat.CanHidePosts > 0
	out.CanUnhide = CanUnhidePost(user, post)
	out.CanHide = CanHidePost(user, post)
	out.CanDelete = CanDeletePost(user, post)
	out.CanProtect = CanProtectPost(user, post)
	out.CanApprove = CanApprovePost(user, post)
	out.CanMove = CanMovePost(user, post)
	out.CanMerge = CanMergePost(user, post)
	out.CanReport = cat.CanReportContent > 0
	out.CanSeeReports = cat.CanSeeReports > 0
	out.CanSeeLikes = cat.CanSeePostsLikes
	out.CanLike = user.IsAuthenticated && out.CanSeeLikes > 0 && cat.CanLikePosts > 0
}

// CategoryView is a category's ACL as shown to user, with the category's
// own approval settings folded in.
type CategoryView struct {
	acl.CategoryACL
	CanSeeOwnPapers bool `json:"can_see_own_papers"`
}

func AddACLToCategory(user *acl.UserACL, category *models.Category) CategoryView {
	view := CategoryView{CategoryACL: user.Category(category.ID)}

	if category.RequirePapersApproval {
		view.RequirePapersApproval = 1
	}
	if category.RequireRepliesApproval {
		view.RequireRepliesApproval = 1
	}
	if category.RequireEditsApproval {
		view.RequireEditsApproval = 1
	}
	if view.CanApproveContent > 0 {
		view.RequirePapersApproval = 0
		view.RequireRepliesApproval = 0
		view.RequireEditsApproval = 0
	}
	view.CanSeeOwnPapers = view.CanSeeAllPapers == 0
	return view
}
