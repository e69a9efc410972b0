package acl

import "slices"

// CategoryACL holds every category-scoped level. The zero value means no
// access at all, which is also what a missing category resolves to.
type CategoryACL struct {
	CanSee                 int `json:"can_see"`
	CanBrowse              int `json:"can_browse"`
	CanSeeAllPapers        int `json:"can_see_all_papers"`
	CanStartPapers         int `json:"can_start_papers"`
	CanReplyPapers         int `json:"can_reply_papers"`
	CanEditPapers          int `json:"can_edit_papers"`
	CanEditPosts           int `json:"can_edit_posts"`
	CanHideOwnPapers       int `json:"can_hide_own_papers"`
	CanHideOwnPosts        int `json:"can_hide_own_posts"`
	PaperEditTime          int `json:"paper_edit_time"`
	PostEditTime           int `json:"post_edit_time"`
	CanHidePapers          int `json:"can_hide_papers"`
	CanHidePosts           int `json:"can_hide_posts"`
	CanProtectPosts        int `json:"can_protect_posts"`
	CanMovePosts           int `json:"can_move_posts"`
	CanMergePosts          int `json:"can_merge_posts"`
	CanPinPapers           int `json:"can_pin_papers"`
	CanClosePapers         int `json:"can_close_papers"`
	CanMovePapers          int `json:"can_move_papers"`
	CanMergePapers         int `json:"can_merge_papers"`
	CanApproveContent      int `json:"can_approve_content"`
	CanReportContent       int `json:"can_report_content"`
	CanSeeReports          int `json:"can_see_reports"`
	CanSeePostsLikes       int `json:"can_see_posts_likes"`
	CanLikePosts           int `json:"can_like_posts"`
	CanHideEvents          int `json:"can_hide_events"`
	RequirePapersApproval  int `json:"require_papers_approval"`
	RequireRepliesApproval int `json:"require_replies_approval"`
	RequireEditsApproval   int `json:"require_edits_approval"`
}

// UserACL is the permission document of one identity. It is built once per
// request (or served from cache) and must not be mutated afterwards.
type UserACL struct {
	UserID          uint   `json:"user_id"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsAnonymous     bool   `json:"is_anonymous"`
	CacheVersion    string `json:"cache_version,omitempty"`

	CanSeeUnapprovedContentLists  int `json:"can_see_unapproved_content_lists"`
	CanSeeReportedContentLists    int `json:"can_see_reported_content_lists"`
	CanOmitFloodProtection        int `json:"can_omit_flood_protection"`
	CanUsePrivatePapers           int `json:"can_use_private_papers"`
	CanStartPrivatePapers         int `json:"can_start_private_papers"`
	MaxPrivatePaperParticipants   int `json:"max_private_paper_participants"`
	CanAddEveryoneToPrivatePapers int `json:"can_add_everyone_to_private_papers"`
	CanReportPrivatePapers        int `json:"can_report_private_papers"`
	CanModeratePrivatePapers      int `json:"can_moderate_private_papers"`
	CanBeBlocked                  int `json:"can_be_blocked"`

	CanApproveContent    []uint `json:"can_approve_content"`
	CanSeeReports        []uint `json:"can_see_reports"`
	VisibleCategories    []uint `json:"visible_categories"`
	BrowseableCategories []uint `json:"browseable_categories"`

	Categories map[uint]CategoryACL `json:"categories"`
}

// Category returns the levels for categoryID, or the zero value when the
// category isn't browseable.
func (a *UserACL) Category(categoryID uint) CategoryACL {
	return a.Categories[categoryID]
}

func (a *UserACL) HasCategory(categoryID uint) bool {
	_, ok := a.Categories[categoryID]
	return ok
}

func (a *UserACL) CanApproveIn(categoryID uint) bool {
	return slices.Contains(a.CanApproveContent, categoryID)
}

func (a *UserACL) CanSeeReportsIn(categoryID uint) bool {
	return slices.Contains(a.CanSeeReports, categoryID)
}

func (a *UserACL) IsPrivatePapersModerator() bool {
	return a.CanModeratePrivatePapers > 0
}

// ForIdentity returns a shallow copy bound to userID. The category map is
// shared, which is safe because documents are never mutated.
func (a *UserACL) ForIdentity(userID uint, authenticated bool) *UserACL {
	cp := *a
	cp.UserID = userID
	cp.IsAuthenticated = authenticated
	cp.IsAnonymous = !authenticated
	return &cp
}
