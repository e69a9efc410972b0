package acl

import "slices"

// Global permission keys.
const (
	KeyCanSeeUnapprovedContentLists  = "can_see_unapproved_content_lists"
	KeyCanSeeReportedContentLists    = "can_see_reported_content_lists"
	KeyCanOmitFloodProtection        = "can_omit_flood_protection"
	KeyCanUsePrivatePapers           = "can_use_private_papers"
	KeyCanStartPrivatePapers         = "can_start_private_papers"
	KeyMaxPrivatePaperParticipants   = "max_private_paper_participants"
	KeyCanAddEveryoneToPrivatePapers = "can_add_everyone_to_private_papers"
	KeyCanReportPrivatePapers        = "can_report_private_papers"
	KeyCanModeratePrivatePapers      = "can_moderate_private_papers"
	KeyCanBeBlocked                  = "can_be_blocked"
)

// Category permission keys.
const (
	KeyCanSee                 = "can_see"
	KeyCanBrowse              = "can_browse"
	KeyCanSeeAllPapers        = "can_see_all_papers"
	KeyCanStartPapers         = "can_start_papers"
	KeyCanReplyPapers         = "can_reply_papers"
	KeyCanEditPapers          = "can_edit_papers"
	KeyCanEditPosts           = "can_edit_posts"
	KeyCanHideOwnPapers       = "can_hide_own_papers"
	KeyCanHideOwnPosts        = "can_hide_own_posts"
	KeyPaperEditTime          = "paper_edit_time"
	KeyPostEditTime           = "post_edit_time"
	KeyCanHidePapers          = "can_hide_papers"
	KeyCanHidePosts           = "can_hide_posts"
	KeyCanProtectPosts        = "can_protect_posts"
	KeyCanMovePosts           = "can_move_posts"
	KeyCanMergePosts          = "can_merge_posts"
	KeyCanPinPapers           = "can_pin_papers"
	KeyCanClosePapers         = "can_close_papers"
	KeyCanMovePapers          = "can_move_papers"
	KeyCanMergePapers         = "can_merge_papers"
	KeyCanApproveContent      = "can_approve_content"
	KeyCanReportContent       = "can_report_content"
	KeyCanSeeReports          = "can_see_reports"
	KeyCanSeePostsLikes       = "can_see_posts_likes"
	KeyCanLikePosts           = "can_like_posts"
	KeyCanHideEvents          = "can_hide_events"
	KeyRequirePapersApproval  = "require_papers_approval"
	KeyRequireRepliesApproval = "require_replies_approval"
	KeyRequireEditsApproval   = "require_edits_approval"
)

// anon marks keys an anonymous identity keeps. Everything else is zeroed
// for guests so guards and visibility filters read the same levels.
type globalKey struct {
	name     string
	fallback int
	reduce   Reducer
	anon     bool
	field    func(*UserACL) *int
}

type categoryKey struct {
	name   string
	reduce Reducer
	anon   bool
	field  func(*CategoryACL) *int
}

var globalKeys = []globalKey{
	{KeyCanSeeUnapprovedContentLists, 0, Greater, false, func(a *UserACL) *int { return &a.CanSeeUnapprovedContentLists }},
	{KeyCanSeeReportedContentLists, 0, Greater, false, func(a *UserACL) *int { return &a.CanSeeReportedContentLists }},
	{KeyCanOmitFloodProtection, 0, Greater, false, func(a *UserACL) *int { return &a.CanOmitFloodProtection }},
	{KeyCanUsePrivatePapers, 0, Greater, false, func(a *UserACL) *int { return &a.CanUsePrivatePapers }},
	{KeyCanStartPrivatePapers, 0, Greater, false, func(a *UserACL) *int { return &a.CanStartPrivatePapers }},
	{KeyMaxPrivatePaperParticipants, 3, GreaterOrZero, false, func(a *UserACL) *int { return &a.MaxPrivatePaperParticipants }},
	{KeyCanAddEveryoneToPrivatePapers, 0, Greater, false, func(a *UserACL) *int { return &a.CanAddEveryoneToPrivatePapers }},
	{KeyCanReportPrivatePapers, 0, Greater, false, func(a *UserACL) *int { return &a.CanReportPrivatePapers }},
	{KeyCanModeratePrivatePapers, 0, Greater, false, func(a *UserACL) *int { return &a.CanModeratePrivatePapers }},
	{KeyCanBeBlocked, 1, Lower, true, func(a *UserACL) *int { return &a.CanBeBlocked }},
}

var categoryKeys = []categoryKey{
	{KeyCanSee, Greater, true, func(c *CategoryACL) *int { return &c.CanSee }},
	{KeyCanBrowse, Greater, true, func(c *CategoryACL) *int { return &c.CanBrowse }},
	{KeyCanSeeAllPapers, Greater, true, func(c *CategoryACL) *int { return &c.CanSeeAllPapers }},
	{KeyCanStartPapers, Greater, false, func(c *CategoryACL) *int { return &c.CanStartPapers }},
	{KeyCanReplyPapers, Greater, false, func(c *CategoryACL) *int { return &c.CanReplyPapers }},
	{KeyCanEditPapers, Greater, false, func(c *CategoryACL) *int { return &c.CanEditPapers }},
	{KeyCanEditPosts, Greater, false, func(c *CategoryACL) *int { return &c.CanEditPosts }},
	{KeyCanHideOwnPapers, Greater, false, func(c *CategoryACL) *int { return &c.CanHideOwnPapers }},
	{KeyCanHideOwnPosts, Greater, false, func(c *CategoryACL) *int { return &c.CanHideOwnPosts }},
	{KeyPaperEditTime, GreaterOrZero, true, func(c *CategoryACL) *int { return &c.PaperEditTime }},
	{KeyPostEditTime, GreaterOrZero, true, func(c *CategoryACL) *int { return &c.PostEditTime }},
	{KeyCanHidePapers, Greater, false, func(c *CategoryACL) *int { return &c.CanHidePapers }},
	{KeyCanHidePosts, Greater, false, func(c *CategoryACL) *int { return &c.CanHidePosts }},
	{KeyCanProtectPosts, Greater, false, func(c *CategoryACL) *int { return &c.CanProtectPosts }},
	{KeyCanMovePosts, Greater, false, func(c *CategoryACL) *int { return &c.CanMovePosts }},
	{KeyCanMergePosts, Greater, false, func(c *CategoryACL) *int { return &c.CanMergePosts }},
	{KeyCanPinPapers, Greater, false, func(c *CategoryACL) *int { return &c.CanPinPapers }},
	{KeyCanClosePapers, Greater, false, func(c *CategoryACL) *int { return &c.CanClosePapers }},
	{KeyCanMovePapers, Greater, false, func(c *CategoryACL) *int { return &c.CanMovePapers }},
	{KeyCanMergePapers, Greater, false, func(c *CategoryACL) *int { return &c.CanMergePapers }},
	{KeyCanApproveContent, Greater, false, func(c *CategoryACL) *int { return &c.CanApproveContent }},
	{KeyCanReportContent, Greater, false, func(c *CategoryACL) *int { return &c.CanReportContent }},
	{KeyCanSeeReports, Greater, false, func(c *CategoryACL) *int { return &c.CanSeeReports }},
	{KeyCanSeePostsLikes, Greater, true, func(c *CategoryACL) *int { return &c.CanSeePostsLikes }},
	{KeyCanLikePosts, Greater, false, func(c *CategoryACL) *int { return &c.CanLikePosts }},
	{KeyCanHideEvents, Greater, false, func(c *CategoryACL) *int { return &c.CanHideEvents }},
	{KeyRequirePapersApproval, Greater, true, func(c *CategoryACL) *int { return &c.RequirePapersApproval }},
	{KeyRequireRepliesApproval, Greater, true, func(c *CategoryACL) *int { return &c.RequireRepliesApproval }},
	{KeyRequireEditsApproval, Greater, true, func(c *CategoryACL) *int { return &c.RequireEditsApproval }},
}

// IsGlobalKey reports whether name is a known global permission key.
func IsGlobalKey(name string) bool {
	return slices.ContainsFunc(globalKeys, func(k globalKey) bool { return k.name == name })
}

// IsCategoryKey reports whether name is a known category permission key.
func IsCategoryKey(name string) bool {
	return slices.ContainsFunc(categoryKeys, func(k categoryKey) bool { return k.name == name })
}
